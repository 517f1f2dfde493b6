package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
	httpH "github.com/tasbeha/deaconschool-backend/internal/http/handlers"
	httpMW "github.com/tasbeha/deaconschool-backend/internal/http/middleware"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	UserHandler        *httpH.UserHandler
	RecordHandler      *httpH.RecordHandler
	LedgerHandler      *httpH.LedgerHandler
	CatalogHandler     *httpH.CatalogHandler
	ProgressionHandler *httpH.ProgressionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Activity records
		if cfg.RecordHandler != nil {
			protected.POST("/records", cfg.RecordHandler.Submit)
			protected.GET("/records", cfg.RecordHandler.ListMine)
			protected.GET("/records/:id", cfg.RecordHandler.Get)
		}

		// Catalog (read-only)
		if cfg.CatalogHandler != nil {
			protected.GET("/levels", cfg.CatalogHandler.ListLevels)
			protected.GET("/levels/:id", cfg.CatalogHandler.GetLevelTree)
		}

		// Progression
		if cfg.ProgressionHandler != nil {
			protected.POST("/nodes/:id/start", cfg.ProgressionHandler.StartNode)
			protected.POST("/nodes/:id/complete", cfg.ProgressionHandler.CompleteNode)
			protected.GET("/nodes/:id/status", cfg.ProgressionHandler.NodeStatus)
			protected.GET("/levels/:id/progress", cfg.ProgressionHandler.LevelOverview)
			protected.GET("/levels/:id/certificate", cfg.ProgressionHandler.CertificateEligibility)
			protected.GET("/assignments", cfg.ProgressionHandler.ListAssignments)
		}

		// Ledger (own balance)
		if cfg.LedgerHandler != nil {
			protected.GET("/ledger/:deaconId/balance", cfg.LedgerHandler.GetBalance)
			protected.GET("/ledger/:deaconId/transactions", cfg.LedgerHandler.ListTransactions)
		}
	}

	// Review and administration, servants and admins only.
	review := protected.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			review.Use(cfg.AuthMiddleware.RequireRole(domain.RoleServant, domain.RoleAdmin))
		}
		if cfg.RecordHandler != nil {
			review.GET("/records-pending", cfg.RecordHandler.ListPending)
			review.POST("/records/:id/review", cfg.RecordHandler.Review)
		}
		if cfg.LedgerHandler != nil {
			review.POST("/ledger/adjustments", cfg.LedgerHandler.Adjust)
			review.GET("/ledger-reconcile", cfg.LedgerHandler.ReconcileAll)
			review.GET("/ledger/:deaconId/reconcile", cfg.LedgerHandler.Reconcile)
		}
	}

	return r
}
