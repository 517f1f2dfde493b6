package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/http/response"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/ctxutil"
	"github.com/tasbeha/deaconschool-backend/internal/services"
)

type ProgressionHandler struct {
	progressionService services.ProgressionService
}

func NewProgressionHandler(progressionService services.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progressionService: progressionService}
}

// POST /api/nodes/:id/start
func (h *ProgressionHandler) StartNode(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	out, err := h.progressionService.StartNode(c.Request.Context(), rd.UserID, nodeID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"completion": out})
}

// POST /api/nodes/:id/complete
func (h *ProgressionHandler) CompleteNode(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req services.CompleteNodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	out, err := h.progressionService.CompleteNode(c.Request.Context(), rd.UserID, nodeID, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"completion": out})
}

// GET /api/nodes/:id/status
func (h *ProgressionHandler) NodeStatus(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	st, err := h.progressionService.NodeStatus(c.Request.Context(), rd.UserID, nodeID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": st})
}

// GET /api/levels/:id/progress
func (h *ProgressionHandler) LevelOverview(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	statuses, err := h.progressionService.LevelOverview(c.Request.Context(), rd.UserID, levelID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"nodes": statuses})
}

// GET /api/assignments
func (h *ProgressionHandler) ListAssignments(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	out, err := h.progressionService.ListAssignments(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": out})
}

// GET /api/levels/:id/certificate
func (h *ProgressionHandler) CertificateEligibility(c *gin.Context) {
	levelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	out, err := h.progressionService.CanIssueCertificate(c.Request.Context(), rd.UserID, levelID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"certificate": out})
}
