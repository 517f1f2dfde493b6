package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/http/response"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/ctxutil"
	"github.com/tasbeha/deaconschool-backend/internal/services"
)

type RecordHandler struct {
	recordService services.RecordService
	reviewService services.ReviewService
}

func NewRecordHandler(recordService services.RecordService, reviewService services.ReviewService) *RecordHandler {
	return &RecordHandler{recordService: recordService, reviewService: reviewService}
}

// POST /api/records
func (h *RecordHandler) Submit(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req services.SubmitRecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rec, err := h.recordService.Submit(c.Request.Context(), rd.UserID, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"record": rec})
}

// GET /api/records
func (h *RecordHandler) ListMine(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	records, err := h.recordService.ListByOwner(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"records": records})
}

// GET /api/records/pending
func (h *RecordHandler) ListPending(c *gin.Context) {
	records, err := h.recordService.ListPending(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"records": records})
}

// GET /api/records/:id
func (h *RecordHandler) Get(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	rec, err := h.recordService.Get(c.Request.Context(), rd.UserID, rd.Role, recordID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"record": rec})
}

// POST /api/records/:id/review
func (h *RecordHandler) Review(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req services.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	rec, err := h.reviewService.Review(c.Request.Context(), rd.UserID, recordID, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"record": rec})
}
