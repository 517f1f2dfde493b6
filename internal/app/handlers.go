package app

import (
	httpH "github.com/tasbeha/deaconschool-backend/internal/http/handlers"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Record      *httpH.RecordHandler
	Ledger      *httpH.LedgerHandler
	Catalog     *httpH.CatalogHandler
	Progression *httpH.ProgressionHandler
	Health      *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:        httpH.NewAuthHandler(s.Auth),
		User:        httpH.NewUserHandler(s.User),
		Record:      httpH.NewRecordHandler(s.Record, s.Review),
		Ledger:      httpH.NewLedgerHandler(s.Ledger),
		Catalog:     httpH.NewCatalogHandler(s.Catalog),
		Progression: httpH.NewProgressionHandler(s.Progression),
		Health:      httpH.NewHealthHandler(),
	}
}
