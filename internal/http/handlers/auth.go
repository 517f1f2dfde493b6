package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasbeha/deaconschool-backend/internal/http/response"
	"github.com/tasbeha/deaconschool-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"user":         out.User,
		"access_token": out.AccessToken,
		"expires_at":   out.ExpiresAt,
	})
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"user":         out.User,
		"access_token": out.AccessToken,
		"expires_at":   out.ExpiresAt,
	})
}
