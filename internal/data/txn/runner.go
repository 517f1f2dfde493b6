package txn

import (
	"context"

	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

// Runner is the shared transaction boundary primitive. Review approval and
// ledger crediting run inside one Runner transaction so their effects are
// never observably separable.
type Runner interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormRunner struct {
	db *gorm.DB
}

// NewGormRunner returns a runner backed by GORM transactions.
func NewGormRunner(db *gorm.DB) Runner {
	return &gormRunner{db: db}
}

func (r *gormRunner) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domain.NewError(domain.CodeInternal, "txn.InTx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}
