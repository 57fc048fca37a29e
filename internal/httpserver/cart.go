package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "shopcore/internal/service/cart"
)

func getCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"cart": cart})
	}
}

func addCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartsvc.AddInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		cart, err := carts.AddItem(c.Request.Context(), currentUser(c).ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "item added to cart", gin.H{"cart": cart})
	}
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func updateCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			badRequest(c, "quantity is required")
			return
		}
		cart, err := carts.UpdateQuantity(c.Request.Context(), currentUser(c).ID, c.Param("itemId"), *req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "cart updated", gin.H{"cart": cart})
	}
}

func removeCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.RemoveItem(c.Request.Context(), currentUser(c).ID, c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "item removed", gin.H{"cart": cart})
	}
}

func clearCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := carts.Clear(c.Request.Context(), currentUser(c).ID); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "cart cleared", nil)
	}
}
