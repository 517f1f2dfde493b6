package repos

import (
	"context"
	"testing"
	"time"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos/testutil"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

func TestApplyReviewOnlyHitsPendingRecords(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewRecordRepo(tx, testutil.Logger(t))
	ctx := context.Background()

	deacon := testutil.SeedUser(t, tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, tx, domain.RoleServant)
	rec := testutil.SeedRecord(t, tx, deacon.ID, domain.CategoryLiturgy, 10)

	updates := map[string]interface{}{
		"status":      domain.RecordApproved,
		"reviewer_id": servant.ID,
		"reviewed_at": time.Now().UTC(),
	}
	rows, err := repo.ApplyReview(ctx, tx, rec.ID, updates)
	if err != nil {
		t.Fatalf("ApplyReview: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	// A second decision finds no pending row to claim.
	rows, err = repo.ApplyReview(ctx, tx, rec.ID, map[string]interface{}{
		"status": domain.RecordRejected,
	})
	if err != nil {
		t.Fatalf("ApplyReview second: %v", err)
	}
	if rows != 0 {
		t.Fatalf("rows = %d, want 0", rows)
	}

	got, err := repo.GetByID(ctx, tx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.RecordApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}
}

func TestListByStatusOrdersOldestFirst(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewRecordRepo(tx, testutil.Logger(t))
	ctx := context.Background()

	deacon := testutil.SeedUser(t, tx, domain.RoleDeacon)
	older := testutil.SeedRecord(t, tx, deacon.ID, domain.CategoryPrayer, 5)
	newer := testutil.SeedRecord(t, tx, deacon.ID, domain.CategoryPrayer, 5)
	if err := tx.Model(&domain.ActivityRecord{}).
		Where("id = ?", older.ID).
		Update("submitted_at", time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate record: %v", err)
	}

	out, err := repo.ListByStatus(ctx, tx, []domain.RecordStatus{domain.RecordPending})
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].ID != older.ID || out[1].ID != newer.ID {
		t.Fatal("expected oldest pending record first")
	}
}
