package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/http/response"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/ctxutil"
	"github.com/tasbeha/deaconschool-backend/internal/services"
)

type LedgerHandler struct {
	ledgerService services.LedgerService
}

func NewLedgerHandler(ledgerService services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// deaconParam resolves the subject deacon: deacons always act on their own
// ledger, reviewers may name any deacon in the path.
func deaconParam(c *gin.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	raw := c.Param("deaconId")
	if raw == "" || raw == "me" {
		return rd.UserID, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	if rd.Role == domain.RoleDeacon && id != rd.UserID {
		return uuid.Nil, domain.NewError(domain.CodeNotFound, "ledger.deaconParam", "deacon not found", nil)
	}
	return id, nil
}

// GET /api/ledger/:deaconId/balance
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	deaconID, err := deaconParam(c)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	bal, err := h.ledgerService.GetBalance(c.Request.Context(), deaconID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"balance": bal, "category_points": bal.CategoryMap()})
}

// GET /api/ledger/:deaconId/transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	deaconID, err := deaconParam(c)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	entries, err := h.ledgerService.ListTransactions(c.Request.Context(), deaconID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"transactions": entries})
}

// POST /api/ledger/adjustments
func (h *LedgerHandler) Adjust(c *gin.Context) {
	var req services.AdjustInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	entry, err := h.ledgerService.Adjust(c.Request.Context(), rd.UserID, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"transaction": entry})
}

// GET /api/ledger/:deaconId/reconcile
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	deaconID, err := deaconParam(c)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	report, err := h.ledgerService.Reconcile(c.Request.Context(), deaconID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

// GET /api/ledger/reconcile
func (h *LedgerHandler) ReconcileAll(c *gin.Context) {
	reports, err := h.ledgerService.ReconcileAll(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reports": reports})
}
