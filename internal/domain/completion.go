package domain

import (
	"time"

	"github.com/google/uuid"
)

// NodeKind distinguishes curriculum node types in completion facts.
type NodeKind string

const (
	NodeLevel   NodeKind = "level"
	NodeSubject NodeKind = "subject"
	NodeLesson  NodeKind = "lesson"
	NodeQuiz    NodeKind = "quiz"
)

// NodeCompletion is one deacon's completion fact for a lesson or quiz.
// The progression gate consumes these as an injected facts map; the
// timed-quiz UI is out of scope and only the final score lands here.
type NodeCompletion struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DeaconID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_completion_deacon_node" json:"deacon_id"`
	NodeID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_completion_deacon_node" json:"node_id"`
	Kind        NodeKind   `gorm:"type:text;not null" json:"kind"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Score       *float64   `json:"score,omitempty"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (NodeCompletion) TableName() string { return "node_completions" }
