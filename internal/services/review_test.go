package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/repos/testutil"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

type reviewFixture struct {
	tx       *gorm.DB
	records  repos.RecordRepo
	balances repos.BalanceRepo
	txs      repos.TransactionRepo
	ledger   LedgerService
	review   ReviewService
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	runner := txn.NewGormRunner(tx)

	records := repos.NewRecordRepo(tx, log)
	users := repos.NewUserRepo(tx, log)
	balances := repos.NewBalanceRepo(tx, log)
	txs := repos.NewTransactionRepo(tx, log)

	ledger := NewLedgerService(balances, txs, runner, log)
	review := NewReviewService(records, users, ledger, runner, DefaultPolicy(), log)
	return &reviewFixture{
		tx:       tx,
		records:  records,
		balances: balances,
		txs:      txs,
		ledger:   ledger,
		review:   review,
	}
}

func TestReviewApproveCreditsLedger(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, f.tx, domain.RoleServant)
	rec := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryLiturgy, 10)

	out, err := f.review.Review(ctx, servant.ID, rec.ID, ReviewInput{Decision: domain.RecordApproved})
	require.NoError(t, err)
	require.Equal(t, domain.RecordApproved, out.Status)
	require.NotNil(t, out.AwardedPoints)
	require.Equal(t, 10, *out.AwardedPoints)

	bal, err := f.balances.GetByDeacon(ctx, f.tx, deacon.ID)
	require.NoError(t, err)
	require.NotNil(t, bal)
	require.Equal(t, 10, bal.TotalPoints)
	require.Equal(t, 10, bal.CategoryMap()[string(domain.CategoryLiturgy)])
	require.Equal(t, bal.TotalPoints, bal.CategorySum())

	entry, err := f.txs.FindByRecord(ctx, f.tx, deacon.ID, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, domain.TxEarned, entry.Kind)
	require.Equal(t, 10, entry.Points)
}

func TestReviewRejectRequiresNotes(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, f.tx, domain.RoleServant)
	rec := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryPrayer, 5)

	_, err := f.review.Review(ctx, servant.ID, rec.ID, ReviewInput{Decision: domain.RecordRejected})
	require.True(t, domain.IsCode(err, domain.CodeValidation))

	out, err := f.review.Review(ctx, servant.ID, rec.ID, ReviewInput{
		Decision:    domain.RecordRejected,
		ReviewNotes: "no corroborating attendance",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RecordRejected, out.Status)

	// Rejection never touches the ledger.
	bal, err := f.balances.GetByDeacon(ctx, f.tx, deacon.ID)
	require.NoError(t, err)
	require.Nil(t, bal)
}

func TestReviewTerminalRecordFails(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, f.tx, domain.RoleServant)
	rec := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryLiturgy, 10)

	_, err := f.review.Review(ctx, servant.ID, rec.ID, ReviewInput{
		Decision:    domain.RecordNeedsRevision,
		ReviewNotes: "add the liturgy date",
	})
	require.NoError(t, err)

	_, err = f.review.Review(ctx, servant.ID, rec.ID, ReviewInput{Decision: domain.RecordApproved})
	require.True(t, domain.IsCode(err, domain.CodeInvalidState))
}

func TestReviewAdjustedPointsCap(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, f.tx, domain.RoleServant)

	over := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryLiturgy, 10)
	_, err := f.review.Review(ctx, servant.ID, over.ID, ReviewInput{
		Decision:       domain.RecordApproved,
		AdjustedPoints: testutil.Ptr(21),
	})
	require.True(t, domain.IsCode(err, domain.CodeValidation))

	within := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryLiturgy, 10)
	out, err := f.review.Review(ctx, servant.ID, within.ID, ReviewInput{
		Decision:       domain.RecordApproved,
		AdjustedPoints: testutil.Ptr(15),
	})
	require.NoError(t, err)
	require.Equal(t, 15, *out.AwardedPoints)

	bal, err := f.balances.GetByDeacon(ctx, f.tx, deacon.ID)
	require.NoError(t, err)
	require.Equal(t, 15, bal.TotalPoints)
}

func TestReviewAdjustedPointsOnlyOnApproval(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, f.tx, domain.RoleServant)
	rec := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryPrayer, 5)

	_, err := f.review.Review(ctx, servant.ID, rec.ID, ReviewInput{
		Decision:       domain.RecordRejected,
		ReviewNotes:    "not enough detail",
		AdjustedPoints: testutil.Ptr(3),
	})
	require.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestReviewPermissions(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	other := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	rec := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryLiturgy, 10)

	// Deacons cannot review.
	_, err := f.review.Review(ctx, other.ID, rec.ID, ReviewInput{Decision: domain.RecordApproved})
	require.True(t, domain.IsCode(err, domain.CodeValidation))

	// Owners cannot review their own records, whatever their role.
	owner := testutil.SeedUser(t, f.tx, domain.RoleServant)
	own := testutil.SeedRecord(t, f.tx, owner.ID, domain.CategoryPrayer, 5)
	_, err = f.review.Review(ctx, owner.ID, own.ID, ReviewInput{Decision: domain.RecordApproved})
	require.True(t, domain.IsCode(err, domain.CodeValidation))
}
