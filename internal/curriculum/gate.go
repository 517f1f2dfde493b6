package curriculum

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

// quizLessonRatio is the share of a subject's lessons a deacon must have
// completed before any of the subject's quizzes unlock.
const quizLessonRatio = 0.5

// Fact is one deacon's completion state for a lesson or quiz.
type Fact struct {
	Completed bool
	Score     *float64
}

// Facts maps node id to completion state. Missing entries mean
// not-started.
type Facts map[uuid.UUID]Fact

// Gate evaluates unlock and progress questions for one deacon against a
// built graph. It holds no mutable state and never touches storage.
type Gate struct {
	graph *Graph
	facts Facts
}

func NewGate(graph *Graph, facts Facts) *Gate {
	if facts == nil {
		facts = Facts{}
	}
	return &Gate{graph: graph, facts: facts}
}

// CompletionRatio is the completed share of a subject's lessons, in
// [0, 1]. A subject with no lessons is trivially complete.
func (e *Gate) CompletionRatio(subjectID uuid.UUID) (float64, error) {
	lessons, err := e.graph.LessonsOf(subjectID)
	if err != nil {
		return 0, err
	}
	if len(lessons) == 0 {
		return 1, nil
	}
	var done int
	for _, l := range lessons {
		if e.facts[l.ID].Completed {
			done++
		}
	}
	return float64(done) / float64(len(lessons)), nil
}

// LevelProgress is the arithmetic mean of the level's subject completion
// ratios, in [0, 1]. A level with no subjects reports zero progress.
func (e *Gate) LevelProgress(levelID uuid.UUID) (float64, error) {
	subjects, err := e.graph.SubjectsOf(levelID)
	if err != nil {
		return 0, err
	}
	if len(subjects) == 0 {
		return 0, nil
	}
	var sum float64
	for _, s := range subjects {
		ratio, err := e.CompletionRatio(s.ID)
		if err != nil {
			return 0, err
		}
		sum += ratio
	}
	return sum / float64(len(subjects)), nil
}

// IsUnlocked reports whether the deacon may start the node. The first
// sibling under a parent is always unlocked; a later sibling requires its
// immediate predecessor to satisfy that predecessor's pass threshold.
// Quizzes instead require half the subject's lessons to be complete.
func (e *Gate) IsUnlocked(nodeID uuid.UUID) (bool, error) {
	n, err := e.graph.Node(nodeID)
	if err != nil {
		return false, err
	}

	switch n.Kind {
	case domain.NodeLevel:
		// Level access is governed by assignments, not by the gate.
		return true, nil

	case domain.NodeQuiz:
		ratio, err := e.CompletionRatio(n.ParentID)
		if err != nil {
			return false, err
		}
		return ratio >= quizLessonRatio, nil

	case domain.NodeSubject:
		pred, err := e.graph.PredecessorOf(nodeID)
		if err != nil {
			return false, err
		}
		if pred == nil {
			return true, nil
		}
		ratio, err := e.CompletionRatio(pred.ID)
		if err != nil {
			return false, err
		}
		return ratio*100 >= pred.PassPercentage, nil

	case domain.NodeLesson:
		pred, err := e.graph.PredecessorOf(nodeID)
		if err != nil {
			return false, err
		}
		if pred == nil {
			return true, nil
		}
		return e.facts[pred.ID].Completed, nil
	}

	return false, domain.NewError(domain.CodeCatalogInconsistency, "curriculum.IsUnlocked",
		fmt.Sprintf("node %s has unknown kind %q", nodeID, n.Kind), nil)
}

// NodeProgress is a 0-100 progress figure for any node kind: levels and
// subjects report their completion ratios, lessons and quizzes report
// binary completion.
func (e *Gate) NodeProgress(nodeID uuid.UUID) (float64, error) {
	n, err := e.graph.Node(nodeID)
	if err != nil {
		return 0, err
	}
	switch n.Kind {
	case domain.NodeLevel:
		p, err := e.LevelProgress(nodeID)
		if err != nil {
			return 0, err
		}
		return p * 100, nil
	case domain.NodeSubject:
		r, err := e.CompletionRatio(nodeID)
		if err != nil {
			return 0, err
		}
		return r * 100, nil
	default:
		if e.facts[n.ID].Completed {
			return 100, nil
		}
		return 0, nil
	}
}
