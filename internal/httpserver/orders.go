package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcore/internal/domain"
	ordersvc "shopcore/internal/service/order"
)

func listOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 20)
		offset := intQuery(c, "offset", 0)
		list, err := orders.ListByUser(c.Request.Context(), currentUser(c).ID, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"orders": list, "count": len(list)})
	}
}

func getOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), currentUser(c).ID, c.Param("orderId"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"order": o})
	}
}

func getOrderByNumberHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.GetByNumber(c.Request.Context(), currentUser(c).ID, c.Param("orderNumber"))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"order": o})
	}
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func cancelOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelOrderRequest
		_ = c.ShouldBindJSON(&req) // reason is optional
		o, err := orders.Cancel(c.Request.Context(), currentUser(c).ID, c.Param("orderId"), req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "order cancelled", gin.H{"order": o})
	}
}

func adminListOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 20)
		offset := intQuery(c, "offset", 0)
		status := domain.OrderStatus(c.Query("status"))
		list, err := orders.List(c.Request.Context(), status, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "", gin.H{"orders": list, "count": len(list)})
	}
}

func adminUpdateOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ordersvc.UpdateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		o, err := orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "order updated", gin.H{"order": o})
	}
}

type paymentStatusRequest struct {
	PaymentStatus domain.PaymentStatus `json:"paymentStatus" binding:"required"`
}

func adminPaymentStatusHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "paymentStatus is required")
			return
		}
		o, err := orders.SetPaymentStatus(c.Request.Context(), c.Param("orderId"), req.PaymentStatus)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "payment status updated", gin.H{"order": o})
	}
}
