package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

// SubjectTree is a subject with its ordered children.
type SubjectTree struct {
	Subject *domain.Subject  `json:"subject"`
	Lessons []*domain.Lesson `json:"lessons"`
	Quizzes []*domain.Quiz   `json:"quizzes"`
}

// LevelTree is the full catalog view of one level.
type LevelTree struct {
	Level    *domain.Level  `json:"level"`
	Subjects []*SubjectTree `json:"subjects"`
}

type CatalogService interface {
	ListLevels(ctx context.Context) ([]*domain.Level, error)
	GetLevelTree(ctx context.Context, levelID uuid.UUID) (*LevelTree, error)
}

type catalogService struct {
	catalogRepo repos.CatalogRepo
	log         *logger.Logger
}

func NewCatalogService(catalogRepo repos.CatalogRepo, baseLog *logger.Logger) CatalogService {
	return &catalogService{catalogRepo: catalogRepo, log: baseLog.With("service", "CatalogService")}
}

func (s *catalogService) ListLevels(ctx context.Context) ([]*domain.Level, error) {
	const op = "CatalogService.ListLevels"
	out, err := s.catalogRepo.ListLevels(ctx, nil)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	return out, nil
}

func (s *catalogService) GetLevelTree(ctx context.Context, levelID uuid.UUID) (*LevelTree, error) {
	const op = "CatalogService.GetLevelTree"
	level, err := s.catalogRepo.GetLevel(ctx, nil, levelID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if level == nil {
		return nil, domain.NewError(domain.CodeNotFound, op, "level not found", nil)
	}
	subjects, err := s.catalogRepo.ListSubjects(ctx, nil)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	lessons, err := s.catalogRepo.ListLessons(ctx, nil)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	quizzes, err := s.catalogRepo.ListQuizzes(ctx, nil)
	if err != nil {
		return nil, txn.MapError(op, err)
	}

	tree := &LevelTree{Level: level}
	for _, sub := range subjects {
		if sub.LevelID != levelID {
			continue
		}
		node := &SubjectTree{Subject: sub}
		for _, l := range lessons {
			if l.SubjectID == sub.ID {
				node.Lessons = append(node.Lessons, l)
			}
		}
		for _, q := range quizzes {
			if q.SubjectID == sub.ID {
				node.Quizzes = append(node.Quizzes, q)
			}
		}
		tree.Subjects = append(tree.Subjects, node)
	}
	return tree, nil
}
