package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/orderflow/internal/http/response"
	"github.com/storefront/orderflow/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /auth/register
// body: { "username": "...", "password": "..." }
// Always creates a customer account; any role field in the body is ignored.
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	u, err := ah.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": u.ID})
}

// POST /auth/token
// body: { "username": "...", "password": "..." }
func (ah *AuthHandler) Token(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	token, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	response.RespondOK(c, gin.H{"access_token": token, "token_type": "bearer"})
}
