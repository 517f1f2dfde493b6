package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

// CatalogRepo reads the externally-managed Level/Subject/Lesson/Quiz
// catalog. The progression service rebuilds its graph from these rows on
// demand; catalog CRUD lives outside the engine.
type CatalogRepo interface {
	GetLevel(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Level, error)
	ListLevels(ctx context.Context, tx *gorm.DB) ([]*domain.Level, error)
	ListSubjects(ctx context.Context, tx *gorm.DB) ([]*domain.Subject, error)
	ListLessons(ctx context.Context, tx *gorm.DB) ([]*domain.Lesson, error)
	ListQuizzes(ctx context.Context, tx *gorm.DB) ([]*domain.Quiz, error)
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{db: db, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) GetLevel(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Level, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.Level
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *catalogRepo) ListLevels(ctx context.Context, tx *gorm.DB) ([]*domain.Level, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Level
	if err := t.WithContext(ctx).Order("sort_order ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) ListSubjects(ctx context.Context, tx *gorm.DB) ([]*domain.Subject, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Subject
	if err := t.WithContext(ctx).Order("level_id ASC, sort_order ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) ListLessons(ctx context.Context, tx *gorm.DB) ([]*domain.Lesson, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Lesson
	if err := t.WithContext(ctx).Order("subject_id ASC, sort_order ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogRepo) ListQuizzes(ctx context.Context, tx *gorm.DB) ([]*domain.Quiz, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Quiz
	if err := t.WithContext(ctx).Order("subject_id ASC, sort_order ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
