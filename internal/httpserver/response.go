package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcore/internal/domain"
	usersvc "shopcore/internal/service/user"
)

// All responses share one envelope so clients can branch on `success`
// without inspecting status codes.
func respond(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": status < http.StatusBadRequest, "message": message}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps domain errors onto HTTP statuses. Availability and
// transition failures carry their structured detail through so the client
// can render actionable messages.
func respondError(c *gin.Context, err error) {
	var availErr *domain.AvailabilityError
	if errors.As(err, &availErr) {
		data := gin.H{"reason": string(availErr.Reason), "productId": availErr.ProductID}
		if availErr.Reason == domain.ReasonInsufficientInventory {
			data["available"] = availErr.Available
		}
		if availErr.Reason == domain.ReasonBelowMinimumOrder {
			data["minOrderQuantity"] = availErr.MinOrder
		}
		respond(c, http.StatusBadRequest, availErr.Error(), data)
		return
	}
	var transErr *domain.InvalidTransitionError
	if errors.As(err, &transErr) {
		respond(c, http.StatusBadRequest, transErr.Error(), gin.H{"from": transErr.From, "to": transErr.To})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		respond(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrAlreadyExists):
		respond(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, usersvc.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, err.Error(), nil)
	default:
		respond(c, http.StatusInternalServerError, "internal error", nil)
	}
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, message, nil)
}
