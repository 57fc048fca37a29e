package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersvc "shopcore/internal/service/user"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func signupHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req usersvc.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		u, err := users.Signup(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, "account created", gin.H{"user": u})
	}
}

func loginHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		u, access, refresh, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "logged in", gin.H{
			"user":         u,
			"accessToken":  access,
			"refreshToken": refresh,
			"expiresIn":    users.AccessTTLSeconds(),
		})
	}
}

func logoutHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := users.Logout(c.Request.Context(), bearerToken(c)); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "logged out", nil)
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, http.StatusOK, "", gin.H{"user": currentUser(c)})
	}
}
