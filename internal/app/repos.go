package app

import (
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

type Repos struct {
	User        repos.UserRepo
	Record      repos.RecordRepo
	Balance     repos.BalanceRepo
	Transaction repos.TransactionRepo
	Catalog     repos.CatalogRepo
	Assignment  repos.AssignmentRepo
	Completion  repos.CompletionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		Record:      repos.NewRecordRepo(db, log),
		Balance:     repos.NewBalanceRepo(db, log),
		Transaction: repos.NewTransactionRepo(db, log),
		Catalog:     repos.NewCatalogRepo(db, log),
		Assignment:  repos.NewAssignmentRepo(db, log),
		Completion:  repos.NewCompletionRepo(db, log),
	}
}
