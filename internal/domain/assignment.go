package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus is the lifecycle of a deacon's binding to a level.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentFailed     AssignmentStatus = "failed"
)

// LevelAssignment binds a deacon to a level for an academic year.
// Progress is derived by the progression gate; only an explicit
// administrator override writes it directly.
type LevelAssignment struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	DeaconID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_deacon_level" json:"deacon_id"`
	LevelID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_deacon_level" json:"level_id"`
	AcademicYear    string           `gorm:"not null;uniqueIndex:idx_assignment_deacon_level" json:"academic_year"`
	Status          AssignmentStatus `gorm:"type:text;not null;default:'assigned'" json:"status"`
	Progress        float64          `gorm:"not null;default:0" json:"progress"`
	StartDate       time.Time        `json:"start_date"`
	ExpectedEndDate time.Time        `json:"expected_end_date"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updated_at"`
}

func (LevelAssignment) TableName() string { return "level_assignments" }
