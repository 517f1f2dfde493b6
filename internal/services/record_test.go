package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/repos/testutil"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

func newRecordService(t *testing.T) (RecordService, *domain.User) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	svc := NewRecordService(repos.NewRecordRepo(tx, log), DefaultPolicy(), log)
	return svc, testutil.SeedUser(t, tx, domain.RoleDeacon)
}

func TestSubmitDerivesPointsFromPolicy(t *testing.T) {
	svc, deacon := newRecordService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, deacon.ID, SubmitRecordInput{
		Category:   domain.CategoryLiturgy,
		Title:      "Sunday liturgy",
		OccurredOn: time.Now().UTC().AddDate(0, 0, -2),
	})
	require.NoError(t, err)
	require.Equal(t, domain.RecordPending, rec.Status)
	require.Equal(t, 10, rec.RequestedPoints)
	require.Nil(t, rec.AwardedPoints)
}

func TestSubmitValidation(t *testing.T) {
	svc, deacon := newRecordService(t)
	ctx := context.Background()
	yesterday := time.Now().UTC().AddDate(0, 0, -1)

	cases := []struct {
		name string
		in   SubmitRecordInput
	}{
		{"unknown category", SubmitRecordInput{Category: "fasting", Title: "x", OccurredOn: yesterday}},
		{"missing title", SubmitRecordInput{Category: domain.CategoryPrayer, OccurredOn: yesterday}},
		{"missing date", SubmitRecordInput{Category: domain.CategoryPrayer, Title: "x"}},
		{"future date", SubmitRecordInput{Category: domain.CategoryPrayer, Title: "x", OccurredOn: time.Now().UTC().Add(48 * time.Hour)}},
		{"non positive duration", SubmitRecordInput{Category: domain.CategoryPrayer, Title: "x", OccurredOn: yesterday, DurationMinutes: testutil.Ptr(0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, deacon.ID, tc.in)
			require.True(t, domain.IsCode(err, domain.CodeValidation))
		})
	}
}

func TestGetHidesOtherDeaconsRecords(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	svc := NewRecordService(repos.NewRecordRepo(tx, log), DefaultPolicy(), log)
	ctx := context.Background()

	owner := testutil.SeedUser(t, tx, domain.RoleDeacon)
	other := testutil.SeedUser(t, tx, domain.RoleDeacon)
	servant := testutil.SeedUser(t, tx, domain.RoleServant)
	rec := testutil.SeedRecord(t, tx, owner.ID, domain.CategoryPrayer, 5)

	got, err := svc.Get(ctx, owner.ID, domain.RoleDeacon, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)

	_, err = svc.Get(ctx, other.ID, domain.RoleDeacon, rec.ID)
	require.True(t, domain.IsCode(err, domain.CodeNotFound))

	got, err = svc.Get(ctx, servant.ID, domain.RoleServant, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
}
