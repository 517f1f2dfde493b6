package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PointsBalance is the derived per-deacon balance. TotalPoints must always
// equal the sum of the category buckets; the ledger service is the only
// writer. Version backs the compare-and-swap update that serializes
// concurrent credits for the same deacon.
type PointsBalance struct {
	DeaconID       uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"deacon_id"`
	TotalPoints    int                                `gorm:"not null;default:0" json:"total_points"`
	CategoryPoints datatypes.JSONType[map[string]int] `json:"category_points"`
	Version        int                                `gorm:"not null;default:0" json:"-"`
	LastUpdated    time.Time                          `gorm:"not null" json:"last_updated"`
}

func (PointsBalance) TableName() string { return "points_balances" }

// NewPointsBalance returns a zeroed balance with every bucket present.
func NewPointsBalance(deaconID uuid.UUID) *PointsBalance {
	buckets := make(map[string]int, len(BalanceCategories))
	for _, c := range BalanceCategories {
		buckets[string(c)] = 0
	}
	return &PointsBalance{
		DeaconID:       deaconID,
		TotalPoints:    0,
		CategoryPoints: datatypes.NewJSONType(buckets),
		LastUpdated:    time.Now().UTC(),
	}
}

// CategoryMap returns the buckets with every known category key present.
func (b *PointsBalance) CategoryMap() map[string]int {
	out := make(map[string]int, len(BalanceCategories))
	for _, c := range BalanceCategories {
		out[string(c)] = 0
	}
	for k, v := range b.CategoryPoints.Data() {
		out[k] = v
	}
	return out
}

// SetCategoryMap replaces the buckets.
func (b *PointsBalance) SetCategoryMap(m map[string]int) {
	b.CategoryPoints = datatypes.NewJSONType(m)
}

// CategorySum is the sum of all buckets; it must equal TotalPoints.
func (b *PointsBalance) CategorySum() int {
	var sum int
	for _, v := range b.CategoryPoints.Data() {
		sum += v
	}
	return sum
}

// TransactionKind classifies ledger entries.
type TransactionKind string

const (
	TxEarned     TransactionKind = "earned"
	TxBonus      TransactionKind = "bonus"
	TxPenalty    TransactionKind = "penalty"
	TxAdjustment TransactionKind = "adjustment"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case TxEarned, TxBonus, TxPenalty, TxAdjustment:
		return true
	}
	return false
}

// ManualKind reports whether the kind is allowed on manual adjustments
// (everything except earned, which only approval produces).
func (k TransactionKind) ManualKind() bool {
	switch k {
	case TxBonus, TxPenalty, TxAdjustment:
		return true
	}
	return false
}

// PointsTransaction is an immutable, append-only audit entry. The unique
// index on (deacon_id, record_id) is the storage-level backstop for the
// at-most-one-credit-per-record guarantee; both Postgres and SQLite treat
// NULL record_ids as distinct, so manual entries never collide.
//
// Category is denormalized from the source record (or "bonus" for manual
// kinds) so balances can be recomputed from transactions alone.
type PointsTransaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DeaconID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_tx_deacon_record" json:"deacon_id"`
	RecordID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_tx_deacon_record" json:"record_id,omitempty"`
	Kind       TransactionKind `gorm:"type:text;not null" json:"kind"`
	Category   RecordCategory  `gorm:"type:text;not null" json:"category"`
	Points     int             `gorm:"not null" json:"points"`
	Reason     string          `json:"reason"`
	ApprovedBy uuid.UUID       `gorm:"type:uuid;not null" json:"approved_by"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

func (PointsTransaction) TableName() string { return "points_transactions" }
