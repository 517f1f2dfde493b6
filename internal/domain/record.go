package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordCategory partitions activity records and ledger buckets.
type RecordCategory string

const (
	CategoryLiturgy          RecordCategory = "liturgy"
	CategoryPrayer           RecordCategory = "prayer"
	CategoryPersonalStudy    RecordCategory = "personal_study"
	CategoryCommunityService RecordCategory = "community_service"

	// CategoryBonus is the pseudo-category for transactions with no natural
	// category (bonus/penalty/adjustment kinds).
	CategoryBonus RecordCategory = "bonus"
)

// RecordCategories are the categories a deacon may submit under.
// CategoryBonus is ledger-only and deliberately excluded.
var RecordCategories = []RecordCategory{
	CategoryLiturgy,
	CategoryPrayer,
	CategoryPersonalStudy,
	CategoryCommunityService,
}

// BalanceCategories are every bucket a PointsBalance carries.
var BalanceCategories = []RecordCategory{
	CategoryLiturgy,
	CategoryPrayer,
	CategoryPersonalStudy,
	CategoryCommunityService,
	CategoryBonus,
}

func (c RecordCategory) Valid() bool {
	for _, rc := range RecordCategories {
		if c == rc {
			return true
		}
	}
	return false
}

// RecordStatus is the review lifecycle state of an activity record.
type RecordStatus string

const (
	RecordPending       RecordStatus = "pending"
	RecordApproved      RecordStatus = "approved"
	RecordRejected      RecordStatus = "rejected"
	RecordNeedsRevision RecordStatus = "needs_revision"
)

// Terminal reports whether the status permits no further review.
func (s RecordStatus) Terminal() bool {
	switch s {
	case RecordApproved, RecordRejected, RecordNeedsRevision:
		return true
	}
	return false
}

// ReviewDecision reports whether the status is a valid review outcome.
func (s RecordStatus) ReviewDecision() bool { return s.Terminal() }

// ActivityRecord is one self-reported act of piety, study or service.
// RequestedPoints is derived from the category at submission time and is
// immutable afterwards; review is the only mutation path.
type ActivityRecord struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Category        RecordCategory `gorm:"type:text;not null" json:"category"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `json:"description"`
	OccurredOn      time.Time      `gorm:"not null" json:"occurred_on"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	Location        string         `json:"location"`
	Notes           string         `json:"notes"`
	RequestedPoints int            `gorm:"not null" json:"requested_points"`
	Status          RecordStatus   `gorm:"type:text;not null;default:'pending';index" json:"status"`

	ReviewerID    *uuid.UUID `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes   string     `json:"review_notes,omitempty"`
	AwardedPoints *int       `json:"awarded_points,omitempty"`

	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (ActivityRecord) TableName() string { return "activity_records" }
