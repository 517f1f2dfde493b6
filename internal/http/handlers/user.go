package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasbeha/deaconschool-backend/internal/http/response"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/ctxutil"
	"github.com/tasbeha/deaconschool-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	me, err := h.userService.GetByID(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
