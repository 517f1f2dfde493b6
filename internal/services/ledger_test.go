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

type ledgerFixture struct {
	tx       *gorm.DB
	balances repos.BalanceRepo
	txs      repos.TransactionRepo
	ledger   LedgerService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	balances := repos.NewBalanceRepo(tx, log)
	txs := repos.NewTransactionRepo(tx, log)
	ledger := NewLedgerService(balances, txs, txn.NewGormRunner(tx), log)
	return &ledgerFixture{tx: tx, balances: balances, txs: txs, ledger: ledger}
}

func TestCreditIsIdempotentPerRecord(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, f.tx, domain.RoleServant)
	rec := testutil.SeedRecord(t, f.tx, deacon.ID, domain.CategoryCommunityService, 8)

	require.NoError(t, f.ledger.Credit(ctx, f.tx, rec, servant.ID, 8))
	require.NoError(t, f.ledger.Credit(ctx, f.tx, rec, servant.ID, 8))

	entries, err := f.txs.ListByDeacon(ctx, f.tx, deacon.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	bal, err := f.balances.GetByDeacon(ctx, f.tx, deacon.ID)
	require.NoError(t, err)
	require.Equal(t, 8, bal.TotalPoints)
}

func TestAdjustBonusAndPenalty(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	admin := testutil.SeedUser(t, f.tx, domain.RoleAdmin)

	_, err := f.ledger.Adjust(ctx, admin.ID, AdjustInput{
		DeaconID: deacon.ID,
		Kind:     domain.TxBonus,
		Points:   20,
		Reason:   "hymn competition award",
	})
	require.NoError(t, err)

	_, err = f.ledger.Adjust(ctx, admin.ID, AdjustInput{
		DeaconID: deacon.ID,
		Kind:     domain.TxPenalty,
		Points:   -5,
		Reason:   "missed commitment",
	})
	require.NoError(t, err)

	bal, err := f.ledger.GetBalance(ctx, deacon.ID)
	require.NoError(t, err)
	require.Equal(t, 15, bal.TotalPoints)
	require.Equal(t, 15, bal.CategoryMap()[string(domain.CategoryBonus)])
}

func TestAdjustRejectsOverdraft(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	admin := testutil.SeedUser(t, f.tx, domain.RoleAdmin)

	_, err := f.ledger.Adjust(ctx, admin.ID, AdjustInput{
		DeaconID: deacon.ID,
		Kind:     domain.TxBonus,
		Points:   5,
		Reason:   "small bonus",
	})
	require.NoError(t, err)

	_, err = f.ledger.Adjust(ctx, admin.ID, AdjustInput{
		DeaconID: deacon.ID,
		Kind:     domain.TxPenalty,
		Points:   -10,
		Reason:   "too large",
	})
	require.True(t, domain.IsCode(err, domain.CodeInsufficientBalance))

	// The failed penalty must leave no trace.
	bal, err := f.ledger.GetBalance(ctx, deacon.ID)
	require.NoError(t, err)
	require.Equal(t, 5, bal.TotalPoints)
	entries, err := f.txs.ListByDeacon(ctx, f.tx, deacon.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestAdjustValidation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	admin := testutil.SeedUser(t, f.tx, domain.RoleAdmin)

	cases := []struct {
		name string
		in   AdjustInput
	}{
		{"earned kind is reserved", AdjustInput{DeaconID: deacon.ID, Kind: domain.TxEarned, Points: 5, Reason: "x"}},
		{"zero points", AdjustInput{DeaconID: deacon.ID, Kind: domain.TxBonus, Points: 0, Reason: "x"}},
		{"negative bonus", AdjustInput{DeaconID: deacon.ID, Kind: domain.TxBonus, Points: -5, Reason: "x"}},
		{"positive penalty", AdjustInput{DeaconID: deacon.ID, Kind: domain.TxPenalty, Points: 5, Reason: "x"}},
		{"missing reason", AdjustInput{DeaconID: deacon.ID, Kind: domain.TxBonus, Points: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.Adjust(ctx, admin.ID, tc.in)
			require.True(t, domain.IsCode(err, domain.CodeValidation))
		})
	}
}

func TestGetBalanceForUnknownDeaconIsZero(t *testing.T) {
	f := newLedgerFixture(t)
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)

	bal, err := f.ledger.GetBalance(context.Background(), deacon.ID)
	require.NoError(t, err)
	require.Equal(t, 0, bal.TotalPoints)
	require.Equal(t, 0, bal.CategorySum())
}

func TestReconcileFlagsDrift(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	admin := testutil.SeedUser(t, f.tx, domain.RoleAdmin)

	_, err := f.ledger.Adjust(ctx, admin.ID, AdjustInput{
		DeaconID: deacon.ID,
		Kind:     domain.TxBonus,
		Points:   12,
		Reason:   "service week",
	})
	require.NoError(t, err)

	rep, err := f.ledger.Reconcile(ctx, deacon.ID)
	require.NoError(t, err)
	require.True(t, rep.Consistent)
	require.Equal(t, 12, rep.StoredTotal)
	require.Equal(t, 12, rep.ComputedTotal)

	// Corrupt the stored total behind the service's back.
	require.NoError(t, f.tx.Model(&domain.PointsBalance{}).
		Where("deacon_id = ?", deacon.ID).
		Update("total_points", 99).Error)

	rep, err = f.ledger.Reconcile(ctx, deacon.ID)
	require.NoError(t, err)
	require.False(t, rep.Consistent)
	require.NotEmpty(t, rep.Drift)
}
