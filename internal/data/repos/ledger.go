package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

type BalanceRepo interface {
	// GetByDeacon returns nil when the deacon has no balance row yet.
	GetByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) (*domain.PointsBalance, error)
	Create(ctx context.Context, tx *gorm.DB, row *domain.PointsBalance) error

	// UpdateWithVersion applies the balance iff the stored version still
	// equals expectedVersion, bumping it by one. Zero rows reported means
	// a concurrent writer got there first; the caller reloads and retries.
	UpdateWithVersion(ctx context.Context, tx *gorm.DB, row *domain.PointsBalance, expectedVersion int) (int64, error)

	ListDeaconIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
}

type TransactionRepo interface {
	// Append inserts one immutable ledger entry. The unique index on
	// (deacon_id, record_id) surfaces concurrent duplicate credits as a
	// conflict.
	Append(ctx context.Context, tx *gorm.DB, row *domain.PointsTransaction) error

	FindByRecord(ctx context.Context, tx *gorm.DB, deaconID, recordID uuid.UUID) (*domain.PointsTransaction, error)
	ListByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) ([]*domain.PointsTransaction, error)
}

type balanceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBalanceRepo(db *gorm.DB, baseLog *logger.Logger) BalanceRepo {
	return &balanceRepo{db: db, log: baseLog.With("repo", "BalanceRepo")}
}

func (r *balanceRepo) GetByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) (*domain.PointsBalance, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if deaconID == uuid.Nil {
		return nil, nil
	}
	var out []*domain.PointsBalance
	if err := t.WithContext(ctx).Where("deacon_id = ?", deaconID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *balanceRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.PointsBalance) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *balanceRepo) UpdateWithVersion(ctx context.Context, tx *gorm.DB, row *domain.PointsBalance, expectedVersion int) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&domain.PointsBalance{}).
		Where("deacon_id = ? AND version = ?", row.DeaconID, expectedVersion).
		Updates(map[string]interface{}{
			"total_points":    row.TotalPoints,
			"category_points": row.CategoryPoints,
			"version":         expectedVersion + 1,
			"last_updated":    time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *balanceRepo) ListDeaconIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(ctx).
		Model(&domain.PointsBalance{}).
		Order("deacon_id ASC").
		Pluck("deacon_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type transactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	return &transactionRepo{db: db, log: baseLog.With("repo", "TransactionRepo")}
}

func (r *transactionRepo) Append(ctx context.Context, tx *gorm.DB, row *domain.PointsTransaction) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *transactionRepo) FindByRecord(ctx context.Context, tx *gorm.DB, deaconID, recordID uuid.UUID) (*domain.PointsTransaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if deaconID == uuid.Nil || recordID == uuid.Nil {
		return nil, nil
	}
	var out []*domain.PointsTransaction
	if err := t.WithContext(ctx).
		Where("deacon_id = ? AND record_id = ?", deaconID, recordID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *transactionRepo) ListByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) ([]*domain.PointsTransaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.PointsTransaction
	if deaconID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("deacon_id = ?", deaconID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
