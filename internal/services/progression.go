package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/curriculum"
	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

// NodeStatus is the per-deacon view of one curriculum node.
type NodeStatus struct {
	NodeID    uuid.UUID       `json:"node_id"`
	Kind      domain.NodeKind `json:"kind"`
	Title     string          `json:"title"`
	Unlocked  bool            `json:"unlocked"`
	Started   bool            `json:"started"`
	Completed bool            `json:"completed"`
	Progress  float64         `json:"progress"`
	Score     *float64        `json:"score,omitempty"`
}

// CertificateEligibility is the outcome of a level certificate check. The
// check never mutates the assignment; marking it completed is a separate
// administrative act.
type CertificateEligibility struct {
	LevelID          uuid.UUID               `json:"level_id"`
	Eligible         bool                    `json:"eligible"`
	AssignmentStatus domain.AssignmentStatus `json:"assignment_status,omitempty"`
	Progress         float64                 `json:"progress"`
	RequiredProgress float64                 `json:"required_progress"`
	Reasons          []string                `json:"reasons,omitempty"`
}

type CompleteNodeInput struct {
	Score *float64 `json:"score,omitempty"`
}

type ProgressionService interface {
	StartNode(ctx context.Context, deaconID, nodeID uuid.UUID) (*domain.NodeCompletion, error)
	CompleteNode(ctx context.Context, deaconID, nodeID uuid.UUID, in CompleteNodeInput) (*domain.NodeCompletion, error)

	NodeStatus(ctx context.Context, deaconID, nodeID uuid.UUID) (*NodeStatus, error)
	LevelOverview(ctx context.Context, deaconID, levelID uuid.UUID) ([]*NodeStatus, error)
	CanIssueCertificate(ctx context.Context, deaconID, levelID uuid.UUID) (*CertificateEligibility, error)

	ListAssignments(ctx context.Context, deaconID uuid.UUID) ([]*domain.LevelAssignment, error)
}

type progressionService struct {
	catalogRepo    repos.CatalogRepo
	completionRepo repos.CompletionRepo
	assignmentRepo repos.AssignmentRepo
	runner         txn.Runner
	log            *logger.Logger
}

func NewProgressionService(
	catalogRepo repos.CatalogRepo,
	completionRepo repos.CompletionRepo,
	assignmentRepo repos.AssignmentRepo,
	runner txn.Runner,
	baseLog *logger.Logger,
) ProgressionService {
	return &progressionService{
		catalogRepo:    catalogRepo,
		completionRepo: completionRepo,
		assignmentRepo: assignmentRepo,
		runner:         runner,
		log:            baseLog.With("service", "ProgressionService"),
	}
}

// gateFor loads the catalog and the deacon's completion facts and builds a
// gate over them. The graph is rebuilt per call; catalogs are small (a few
// hundred rows for the whole school) and this keeps unlock answers fresh
// without cache invalidation.
func (s *progressionService) gateFor(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID) (*curriculum.Graph, *curriculum.Gate, error) {
	const op = "ProgressionService.gateFor"

	levels, err := s.catalogRepo.ListLevels(ctx, tx)
	if err != nil {
		return nil, nil, txn.MapError(op, err)
	}
	subjects, err := s.catalogRepo.ListSubjects(ctx, tx)
	if err != nil {
		return nil, nil, txn.MapError(op, err)
	}
	lessons, err := s.catalogRepo.ListLessons(ctx, tx)
	if err != nil {
		return nil, nil, txn.MapError(op, err)
	}
	quizzes, err := s.catalogRepo.ListQuizzes(ctx, tx)
	if err != nil {
		return nil, nil, txn.MapError(op, err)
	}
	graph, err := curriculum.Build(levels, subjects, lessons, quizzes)
	if err != nil {
		return nil, nil, err
	}

	completions, err := s.completionRepo.ListByDeacon(ctx, tx, deaconID)
	if err != nil {
		return nil, nil, txn.MapError(op, err)
	}
	facts := make(curriculum.Facts, len(completions))
	for _, c := range completions {
		facts[c.NodeID] = curriculum.Fact{Completed: c.Completed, Score: c.Score}
	}
	return graph, curriculum.NewGate(graph, facts), nil
}

func (s *progressionService) StartNode(ctx context.Context, deaconID, nodeID uuid.UUID) (*domain.NodeCompletion, error) {
	const op = "ProgressionService.StartNode"
	if deaconID == uuid.Nil || nodeID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "deacon id and node id are required", nil)
	}

	var out *domain.NodeCompletion
	err := s.runner.InTx(ctx, func(tx *gorm.DB) error {
		graph, gate, err := s.gateFor(ctx, tx, deaconID)
		if err != nil {
			return err
		}
		node, err := graph.Node(nodeID)
		if err != nil {
			return err
		}
		if node.Kind == domain.NodeLevel || node.Kind == domain.NodeSubject {
			return domain.NewError(domain.CodeValidation, op,
				fmt.Sprintf("only lessons and quizzes can be started, not a %s", node.Kind), nil)
		}
		unlocked, err := gate.IsUnlocked(nodeID)
		if err != nil {
			return err
		}
		if !unlocked {
			return domain.NewError(domain.CodeNodeLocked, op,
				fmt.Sprintf("%s %q is locked by its prerequisites", node.Kind, node.Title), nil)
		}

		existing, err := s.completionRepo.Get(ctx, tx, deaconID, nodeID)
		if err != nil {
			return txn.MapError(op, err)
		}
		if existing != nil {
			// Re-starting is allowed and keeps the original start time.
			out = existing
			return nil
		}

		now := time.Now().UTC()
		row := &domain.NodeCompletion{
			ID:        uuid.New(),
			DeaconID:  deaconID,
			NodeID:    nodeID,
			Kind:      node.Kind,
			Completed: false,
			StartedAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.completionRepo.Create(ctx, tx, row); err != nil {
			return txn.MapError(op, err)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *progressionService) CompleteNode(ctx context.Context, deaconID, nodeID uuid.UUID, in CompleteNodeInput) (*domain.NodeCompletion, error) {
	const op = "ProgressionService.CompleteNode"
	if deaconID == uuid.Nil || nodeID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "deacon id and node id are required", nil)
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return nil, domain.NewError(domain.CodeValidation, op, "score must be between 0 and 100", nil)
	}

	var out *domain.NodeCompletion
	err := s.runner.InTx(ctx, func(tx *gorm.DB) error {
		graph, gate, err := s.gateFor(ctx, tx, deaconID)
		if err != nil {
			return err
		}
		node, err := graph.Node(nodeID)
		if err != nil {
			return err
		}
		if node.Kind == domain.NodeLevel || node.Kind == domain.NodeSubject {
			return domain.NewError(domain.CodeValidation, op,
				fmt.Sprintf("only lessons and quizzes can be completed, not a %s", node.Kind), nil)
		}
		if node.Kind == domain.NodeQuiz && in.Score == nil {
			return domain.NewError(domain.CodeValidation, op, "quiz completion requires a score", nil)
		}
		unlocked, err := gate.IsUnlocked(nodeID)
		if err != nil {
			return err
		}
		if !unlocked {
			return domain.NewError(domain.CodeNodeLocked, op,
				fmt.Sprintf("%s %q is locked by its prerequisites", node.Kind, node.Title), nil)
		}

		now := time.Now().UTC()
		existing, err := s.completionRepo.Get(ctx, tx, deaconID, nodeID)
		if err != nil {
			return txn.MapError(op, err)
		}
		if existing == nil {
			existing = &domain.NodeCompletion{
				ID:        uuid.New(),
				DeaconID:  deaconID,
				NodeID:    nodeID,
				Kind:      node.Kind,
				StartedAt: now,
				CreatedAt: now,
				UpdatedAt: now,
			}
			existing.Completed = true
			existing.Score = in.Score
			existing.CompletedAt = &now
			if err := s.completionRepo.Create(ctx, tx, existing); err != nil {
				return txn.MapError(op, err)
			}
			out = existing
			return nil
		}

		existing.Completed = true
		existing.CompletedAt = &now
		// A retake keeps the best score.
		if in.Score != nil && (existing.Score == nil || *in.Score > *existing.Score) {
			existing.Score = in.Score
		}
		if err := s.completionRepo.Update(ctx, tx, existing); err != nil {
			return txn.MapError(op, err)
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("node completed", "deacon_id", deaconID, "node_id", nodeID)
	return out, nil
}

func (s *progressionService) NodeStatus(ctx context.Context, deaconID, nodeID uuid.UUID) (*NodeStatus, error) {
	const op = "ProgressionService.NodeStatus"
	graph, gate, err := s.gateFor(ctx, nil, deaconID)
	if err != nil {
		return nil, err
	}
	node, err := graph.Node(nodeID)
	if err != nil {
		return nil, err
	}
	comp, err := s.completionRepo.Get(ctx, nil, deaconID, nodeID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	return s.status(gate, node, comp)
}

func (s *progressionService) LevelOverview(ctx context.Context, deaconID, levelID uuid.UUID) ([]*NodeStatus, error) {
	const op = "ProgressionService.LevelOverview"
	graph, gate, err := s.gateFor(ctx, nil, deaconID)
	if err != nil {
		return nil, err
	}
	subjects, err := graph.SubjectsOf(levelID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByDeacon(ctx, nil, deaconID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	byNode := make(map[uuid.UUID]*domain.NodeCompletion, len(completions))
	for _, c := range completions {
		byNode[c.NodeID] = c
	}

	level, err := graph.Node(levelID)
	if err != nil {
		return nil, err
	}
	out := make([]*NodeStatus, 0, 1+len(subjects)*4)
	st, err := s.status(gate, level, byNode[levelID])
	if err != nil {
		return nil, err
	}
	out = append(out, st)
	for _, sub := range subjects {
		st, err := s.status(gate, sub, byNode[sub.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, st)
		children, err := graph.ChildrenOf(sub.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			st, err := s.status(gate, c, byNode[c.ID])
			if err != nil {
				return nil, err
			}
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *progressionService) status(gate *curriculum.Gate, node *curriculum.Node, comp *domain.NodeCompletion) (*NodeStatus, error) {
	unlocked, err := gate.IsUnlocked(node.ID)
	if err != nil {
		return nil, err
	}
	progress, err := gate.NodeProgress(node.ID)
	if err != nil {
		return nil, err
	}
	st := &NodeStatus{
		NodeID:   node.ID,
		Kind:     node.Kind,
		Title:    node.Title,
		Unlocked: unlocked,
		Progress: progress,
	}
	if comp != nil {
		st.Started = true
		st.Completed = comp.Completed
		st.Score = comp.Score
	}
	return st, nil
}

// ListAssignments returns the deacon's level assignments, newest academic
// year first.
func (s *progressionService) ListAssignments(ctx context.Context, deaconID uuid.UUID) ([]*domain.LevelAssignment, error) {
	const op = "ProgressionService.ListAssignments"
	out, err := s.assignmentRepo.ListByDeacon(ctx, nil, deaconID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	return out, nil
}

// CanIssueCertificate reports whether the deacon has earned the level's
// certificate: either the assignment is already marked completed, or it is
// in progress and the computed level progress meets the level's pass
// percentage. An eligibility check only; nothing is mutated.
func (s *progressionService) CanIssueCertificate(ctx context.Context, deaconID, levelID uuid.UUID) (*CertificateEligibility, error) {
	const op = "ProgressionService.CanIssueCertificate"
	graph, gate, err := s.gateFor(ctx, nil, deaconID)
	if err != nil {
		return nil, err
	}
	level, err := graph.Node(levelID)
	if err != nil {
		return nil, err
	}
	if level.Kind != domain.NodeLevel {
		return nil, domain.NewError(domain.CodeValidation, op,
			fmt.Sprintf("node %s is a %s, not a level", levelID, level.Kind), nil)
	}

	progress, err := gate.LevelProgress(levelID)
	if err != nil {
		return nil, err
	}
	result := &CertificateEligibility{
		LevelID:          levelID,
		Progress:         progress * 100,
		RequiredProgress: level.PassPercentage,
	}

	assignment, err := s.assignmentRepo.Get(ctx, nil, deaconID, levelID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if assignment == nil {
		result.Reasons = append(result.Reasons, "deacon is not assigned to this level")
		return result, nil
	}
	result.AssignmentStatus = assignment.Status

	switch assignment.Status {
	case domain.AssignmentCompleted:
		result.Eligible = true
	case domain.AssignmentInProgress:
		if result.Progress >= level.PassPercentage {
			result.Eligible = true
		} else {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("level progress %.1f%% is below the required %.1f%%", result.Progress, level.PassPercentage))
		}
	default:
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("assignment status %s does not permit certification", assignment.Status))
	}
	return result, nil
}
