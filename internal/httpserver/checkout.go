package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutsvc "shopcore/internal/service/checkout"
)

func checkoutHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutsvc.Input
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := checkout.Checkout(c.Request.Context(), currentUser(c).ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, "order placed", gin.H{"order": order})
	}
}
