package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

type RecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.ActivityRecord) ([]*domain.ActivityRecord, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ActivityRecord, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*domain.ActivityRecord, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, statuses []domain.RecordStatus) ([]*domain.ActivityRecord, error)

	// ApplyReview sets the review fields iff the record is still pending,
	// and reports the number of rows updated. Zero rows means the record
	// is gone or another reviewer won the race; the caller decides which.
	ApplyReview(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error)
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{db: db, log: baseLog.With("repo", "RecordRepo")}
}

func (r *recordRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.ActivityRecord) ([]*domain.ActivityRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.ActivityRecord{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ActivityRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.ActivityRecord
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *recordRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*domain.ActivityRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ActivityRecord
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("submitted_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) ListByStatus(ctx context.Context, tx *gorm.DB, statuses []domain.RecordStatus) ([]*domain.ActivityRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ActivityRecord
	if len(statuses) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("submitted_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) ApplyReview(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return 0, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := t.WithContext(ctx).
		Model(&domain.ActivityRecord{}).
		Where("id = ? AND status = ?", id, domain.RecordPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}
