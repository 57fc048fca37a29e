package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopcore/internal/domain"
)

type ctxKey string

const userCtxKey ctxKey = "authenticatedUser"

const requestIDHeader = "X-Request-Id"

// requestIDMiddleware tags every request with an id, honoring one supplied
// by the caller so ids can be traced across services.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

type tokenLookup interface {
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

// authMiddleware resolves the bearer token into a user and stores it on the
// request context. Requests without a valid token are rejected.
func authMiddleware(users tokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respond(c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, u)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// adminMiddleware guards back-office endpoints with a shared key. An empty
// configured key disables the whole admin surface.
func adminMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || c.GetHeader("X-Admin-Key") != key {
			respond(c, http.StatusUnauthorized, "admin access denied", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func currentUser(c *gin.Context) *domain.User {
	u, _ := c.Request.Context().Value(userCtxKey).(*domain.User)
	return u
}
