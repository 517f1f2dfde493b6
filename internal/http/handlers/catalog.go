package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/http/response"
	"github.com/tasbeha/deaconschool-backend/internal/services"
)

type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GET /api/levels
func (h *CatalogHandler) ListLevels(c *gin.Context) {
	levels, err := h.catalogService.ListLevels(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"levels": levels})
}

// GET /api/levels/:id
func (h *CatalogHandler) GetLevelTree(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	tree, err := h.catalogService.GetLevelTree(c.Request.Context(), levelID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, tree)
}
