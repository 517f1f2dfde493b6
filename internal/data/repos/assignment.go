package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

// AssignmentRepo is read-mostly: assignments are created by administrators
// outside the engine, and the progression gate only consults them.
type AssignmentRepo interface {
	Get(ctx context.Context, tx *gorm.DB, deaconID, levelID uuid.UUID) (*domain.LevelAssignment, error)
	ListByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) ([]*domain.LevelAssignment, error)
	Create(ctx context.Context, tx *gorm.DB, row *domain.LevelAssignment) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) Get(ctx context.Context, tx *gorm.DB, deaconID, levelID uuid.UUID) (*domain.LevelAssignment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if deaconID == uuid.Nil || levelID == uuid.Nil {
		return nil, nil
	}
	var out []*domain.LevelAssignment
	if err := t.WithContext(ctx).
		Where("deacon_id = ? AND level_id = ?", deaconID, levelID).
		Order("academic_year DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *assignmentRepo) ListByDeacon(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) ([]*domain.LevelAssignment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.LevelAssignment
	if deaconID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("deacon_id = ?", deaconID).
		Order("academic_year DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.LevelAssignment) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}
