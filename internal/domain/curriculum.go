package domain

import (
	"time"

	"github.com/google/uuid"
)

// Catalog rows. CRUD over these stays outside the engine; the curriculum
// graph is rebuilt from them whenever they change. Order within a parent
// defines the prerequisite chain; PassPercentage is the unlock threshold
// a node's successor checks against (0-100).

type Level struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Order          int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	PassPercentage float64   `gorm:"not null;default:70" json:"pass_percentage"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Level) TableName() string { return "levels" }

type Subject struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LevelID        uuid.UUID `gorm:"type:uuid;not null;index" json:"level_id"`
	Title          string    `gorm:"not null" json:"title"`
	Order          int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	PassPercentage float64   `gorm:"not null;default:70" json:"pass_percentage"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Subject) TableName() string { return "subjects" }

type Lesson struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID      uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Title          string    `gorm:"not null" json:"title"`
	Order          int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	PassPercentage float64   `gorm:"not null;default:70" json:"pass_percentage"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }

type Quiz struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID      uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Title          string    `gorm:"not null" json:"title"`
	Order          int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	PassPercentage float64   `gorm:"not null;default:50" json:"pass_percentage"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (Quiz) TableName() string { return "quizzes" }
