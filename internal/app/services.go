package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
	"github.com/tasbeha/deaconschool-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Record      services.RecordService
	Review      services.ReviewService
	Ledger      services.LedgerService
	Catalog     services.CatalogService
	Progression services.ProgressionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	policy, err := services.LoadPolicy(cfg.PointsPolicyPath)
	if err != nil {
		return Services{}, fmt.Errorf("load points policy: %w", err)
	}
	runner := txn.NewGormRunner(db)

	ledger := services.NewLedgerService(r.Balance, r.Transaction, runner, log)
	return Services{
		Auth:        services.NewAuthService(r.User, log),
		User:        services.NewUserService(r.User, log),
		Record:      services.NewRecordService(r.Record, policy, log),
		Review:      services.NewReviewService(r.Record, r.User, ledger, runner, policy, log),
		Ledger:      ledger,
		Catalog:     services.NewCatalogService(r.Catalog, log),
		Progression: services.NewProgressionService(r.Catalog, r.Completion, r.Assignment, runner, log),
	}, nil
}
