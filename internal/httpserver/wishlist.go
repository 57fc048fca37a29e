package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	wishlistsvc "shopcore/internal/service/wishlist"
)

func getWishlistHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wishlists.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"wishlist": w})
	}
}

func addWishlistItemHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req wishlistsvc.AddInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		w, err := wishlists.AddItem(c.Request.Context(), currentUser(c).ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "item added to wishlist", gin.H{"wishlist": w})
	}
}

func removeWishlistItemHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := wishlists.RemoveItem(c.Request.Context(), currentUser(c).ID, c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "item removed", gin.H{"wishlist": w})
	}
}

func moveToCartHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req wishlistsvc.MoveInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		w, err := wishlists.MoveToCart(c.Request.Context(), currentUser(c).ID, c.Param("itemId"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "item moved to cart", gin.H{"wishlist": w})
	}
}
