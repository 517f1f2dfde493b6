package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

type CompletionRepo interface {
	Get(ctx context.Context, tx *gorm.DB, deaconID, nodeID uuid.UUID) (*domain.NodeCompletion, error)
	ListByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) ([]*domain.NodeCompletion, error)
	Create(ctx context.Context, tx *gorm.DB, row *domain.NodeCompletion) error
	Update(ctx context.Context, tx *gorm.DB, row *domain.NodeCompletion) error
}

type completionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionRepo(db *gorm.DB, baseLog *logger.Logger) CompletionRepo {
	return &completionRepo{db: db, log: baseLog.With("repo", "CompletionRepo")}
}

func (r *completionRepo) Get(ctx context.Context, tx *gorm.DB, deaconID, nodeID uuid.UUID) (*domain.NodeCompletion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if deaconID == uuid.Nil || nodeID == uuid.Nil {
		return nil, nil
	}
	var out []*domain.NodeCompletion
	if err := t.WithContext(ctx).
		Where("deacon_id = ? AND node_id = ?", deaconID, nodeID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *completionRepo) ListByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) ([]*domain.NodeCompletion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.NodeCompletion
	if deaconID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("deacon_id = ?", deaconID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *completionRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.NodeCompletion) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *completionRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.NodeCompletion) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(ctx).Save(row).Error
}
