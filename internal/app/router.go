package app

import (
	"github.com/gin-gonic/gin"

	serverHTTP "github.com/tasbeha/deaconschool-backend/internal/http"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return serverHTTP.NewRouter(serverHTTP.RouterConfig{
		Log:                log,
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		UserHandler:        handlers.User,
		RecordHandler:      handlers.Record,
		LedgerHandler:      handlers.Ledger,
		CatalogHandler:     handlers.Catalog,
		ProgressionHandler: handlers.Progression,
		HealthHandler:      handlers.Health,
	})
}
