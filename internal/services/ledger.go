package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

// balanceRetries bounds the compare-and-swap loop on a deacon's balance
// row. Contention on a single deacon is rare (one reviewer at a time in
// practice), so a short loop is enough.
const balanceRetries = 3

// reconcileWorkers caps concurrent per-deacon reconciliation checks.
const reconcileWorkers = 8

// AdjustInput is a manual ledger entry outside record review.
type AdjustInput struct {
	DeaconID uuid.UUID              `json:"deacon_id"`
	Kind     domain.TransactionKind `json:"kind"`
	Points   int                    `json:"points"`
	Reason   string                 `json:"reason"`
}

// ReconcileReport is the outcome of replaying a deacon's transaction log
// against the stored balance.
type ReconcileReport struct {
	DeaconID         uuid.UUID      `json:"deacon_id"`
	Consistent       bool           `json:"consistent"`
	StoredTotal      int            `json:"stored_total"`
	ComputedTotal    int            `json:"computed_total"`
	StoredCategories map[string]int `json:"stored_categories"`
	Drift            []string       `json:"drift,omitempty"`
}

type LedgerService interface {
	// Credit applies an approved record's award inside the caller's
	// transaction. Crediting the same record twice is a no-op.
	Credit(ctx context.Context, tx *gorm.DB, rec *domain.ActivityRecord, reviewerID uuid.UUID, points int) error

	Adjust(ctx context.Context, approverID uuid.UUID, in AdjustInput) (*domain.PointsTransaction, error)
	GetBalance(ctx context.Context, deaconID uuid.UUID) (*domain.PointsBalance, error)
	ListTransactions(ctx context.Context, deaconID uuid.UUID) ([]*domain.PointsTransaction, error)

	Reconcile(ctx context.Context, deaconID uuid.UUID) (*ReconcileReport, error)
	ReconcileAll(ctx context.Context) ([]*ReconcileReport, error)
}

type ledgerService struct {
	balanceRepo repos.BalanceRepo
	txRepo      repos.TransactionRepo
	runner      txn.Runner
	log         *logger.Logger
}

func NewLedgerService(balanceRepo repos.BalanceRepo, txRepo repos.TransactionRepo, runner txn.Runner, baseLog *logger.Logger) LedgerService {
	return &ledgerService{
		balanceRepo: balanceRepo,
		txRepo:      txRepo,
		runner:      runner,
		log:         baseLog.With("service", "LedgerService"),
	}
}

func (s *ledgerService) Credit(ctx context.Context, tx *gorm.DB, rec *domain.ActivityRecord, reviewerID uuid.UUID, points int) error {
	const op = "LedgerService.Credit"
	if rec == nil {
		return domain.NewError(domain.CodeValidation, op, "record is required", nil)
	}
	if points < 0 {
		return domain.NewError(domain.CodeValidation, op, "credit points may not be negative", nil)
	}

	existing, err := s.txRepo.FindByRecord(ctx, tx, rec.OwnerID, rec.ID)
	if err != nil {
		return txn.MapError(op, err)
	}
	if existing != nil {
		s.log.Info("credit already applied, skipping",
			"record_id", rec.ID,
			"deacon_id", rec.OwnerID,
			"transaction_id", existing.ID,
		)
		return nil
	}

	recID := rec.ID
	entry := &domain.PointsTransaction{
		ID:         uuid.New(),
		DeaconID:   rec.OwnerID,
		RecordID:   &recID,
		Kind:       domain.TxEarned,
		Category:   rec.Category,
		Points:     points,
		Reason:     fmt.Sprintf("approved activity: %s", rec.Title),
		ApprovedBy: reviewerID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.txRepo.Append(ctx, tx, entry); err != nil {
		// A concurrent approval beat us to the unique index; the credit
		// exists, so the idempotency contract is satisfied.
		mapped := txn.MapError(op, err)
		if domain.IsCode(mapped, domain.CodeConflict) {
			s.log.Warn("concurrent credit detected, treating as applied",
				"record_id", rec.ID, "deacon_id", rec.OwnerID)
			return nil
		}
		return mapped
	}

	if err := s.applyToBalance(ctx, tx, rec.OwnerID, string(rec.Category), points); err != nil {
		return err
	}
	s.log.Info("points credited",
		"record_id", rec.ID,
		"deacon_id", rec.OwnerID,
		"points", points,
		"category", rec.Category,
	)
	return nil
}

func (s *ledgerService) Adjust(ctx context.Context, approverID uuid.UUID, in AdjustInput) (*domain.PointsTransaction, error) {
	const op = "LedgerService.Adjust"
	if in.DeaconID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "deacon id is required", nil)
	}
	if !in.Kind.ManualKind() {
		return nil, domain.NewError(domain.CodeValidation, op, "kind must be bonus, penalty or adjustment", nil)
	}
	if in.Points == 0 {
		return nil, domain.NewError(domain.CodeValidation, op, "points may not be zero", nil)
	}
	if in.Kind == domain.TxBonus && in.Points < 0 {
		return nil, domain.NewError(domain.CodeValidation, op, "bonus points must be positive", nil)
	}
	if in.Kind == domain.TxPenalty && in.Points > 0 {
		return nil, domain.NewError(domain.CodeValidation, op, "penalty points must be negative", nil)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.NewError(domain.CodeValidation, op, "reason is required", nil)
	}

	entry := &domain.PointsTransaction{
		ID:         uuid.New(),
		DeaconID:   in.DeaconID,
		RecordID:   nil,
		Kind:       in.Kind,
		Category:   domain.CategoryBonus,
		Points:     in.Points,
		Reason:     strings.TrimSpace(in.Reason),
		ApprovedBy: approverID,
		CreatedAt:  time.Now().UTC(),
	}
	err := s.runner.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.applyToBalance(ctx, tx, in.DeaconID, string(domain.CategoryBonus), in.Points); err != nil {
			return err
		}
		if err := s.txRepo.Append(ctx, tx, entry); err != nil {
			return txn.MapError(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("manual ledger entry applied",
		"deacon_id", in.DeaconID,
		"kind", in.Kind,
		"points", in.Points,
		"approved_by", approverID,
	)
	return entry, nil
}

// applyToBalance adds delta to one category bucket under version CAS. A
// negative result aborts with insufficient_balance before anything is
// written.
func (s *ledgerService) applyToBalance(ctx context.Context, tx *gorm.DB, deaconID uuid.UUID, category string, delta int) error {
	const op = "LedgerService.applyToBalance"
	for attempt := 0; attempt < balanceRetries; attempt++ {
		bal, err := s.balanceRepo.GetByDeacon(ctx, tx, deaconID)
		if err != nil {
			return txn.MapError(op, err)
		}
		if bal == nil {
			bal = domain.NewPointsBalance(deaconID)
			if err := s.balanceRepo.Create(ctx, tx, bal); err != nil {
				mapped := txn.MapError(op, err)
				if domain.IsCode(mapped, domain.CodeConflict) {
					continue
				}
				return mapped
			}
		}

		if bal.TotalPoints+delta < 0 {
			return domain.NewError(domain.CodeInsufficientBalance, op,
				fmt.Sprintf("balance %d cannot absorb %d", bal.TotalPoints, delta), nil)
		}
		buckets := bal.CategoryMap()
		buckets[category] += delta
		bal.SetCategoryMap(buckets)
		bal.TotalPoints += delta

		rows, err := s.balanceRepo.UpdateWithVersion(ctx, tx, bal, bal.Version)
		if err != nil {
			return txn.MapError(op, err)
		}
		if rows > 0 {
			return nil
		}
		// Lost the version race; reload and retry.
	}
	return domain.NewError(domain.CodeRetryable, op, "balance update contention, retry", nil)
}

func (s *ledgerService) GetBalance(ctx context.Context, deaconID uuid.UUID) (*domain.PointsBalance, error) {
	const op = "LedgerService.GetBalance"
	if deaconID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "deacon id is required", nil)
	}
	bal, err := s.balanceRepo.GetByDeacon(ctx, nil, deaconID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if bal == nil {
		// A deacon with no ledger history reads as a zero balance.
		return domain.NewPointsBalance(deaconID), nil
	}
	return bal, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, deaconID uuid.UUID) ([]*domain.PointsTransaction, error) {
	const op = "LedgerService.ListTransactions"
	out, err := s.txRepo.ListByDeacon(ctx, nil, deaconID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	return out, nil
}

func (s *ledgerService) Reconcile(ctx context.Context, deaconID uuid.UUID) (*ReconcileReport, error) {
	const op = "LedgerService.Reconcile"
	if deaconID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "deacon id is required", nil)
	}
	bal, err := s.balanceRepo.GetByDeacon(ctx, nil, deaconID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if bal == nil {
		bal = domain.NewPointsBalance(deaconID)
	}
	entries, err := s.txRepo.ListByDeacon(ctx, nil, deaconID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}

	computedTotal := 0
	computedBuckets := make(map[string]int)
	for _, c := range domain.BalanceCategories {
		computedBuckets[string(c)] = 0
	}
	for _, e := range entries {
		computedTotal += e.Points
		computedBuckets[string(e.Category)] += e.Points
	}

	report := &ReconcileReport{
		DeaconID:         deaconID,
		StoredTotal:      bal.TotalPoints,
		ComputedTotal:    computedTotal,
		StoredCategories: bal.CategoryMap(),
	}
	if bal.TotalPoints != computedTotal {
		report.Drift = append(report.Drift,
			fmt.Sprintf("total: stored %d, transactions sum to %d", bal.TotalPoints, computedTotal))
	}
	if sum := bal.CategorySum(); sum != bal.TotalPoints {
		report.Drift = append(report.Drift,
			fmt.Sprintf("categories: buckets sum to %d, total is %d", sum, bal.TotalPoints))
	}
	stored := bal.CategoryMap()
	keys := make([]string, 0, len(computedBuckets))
	for k := range computedBuckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if stored[k] != computedBuckets[k] {
			report.Drift = append(report.Drift,
				fmt.Sprintf("category %s: stored %d, transactions sum to %d", k, stored[k], computedBuckets[k]))
		}
	}
	report.Consistent = len(report.Drift) == 0
	if !report.Consistent {
		s.log.Error("ledger drift detected", "deacon_id", deaconID, "drift", report.Drift)
	}
	return report, nil
}

func (s *ledgerService) ReconcileAll(ctx context.Context) ([]*ReconcileReport, error) {
	const op = "LedgerService.ReconcileAll"
	ids, err := s.balanceRepo.ListDeaconIDs(ctx, nil)
	if err != nil {
		return nil, txn.MapError(op, err)
	}

	reports := make([]*ReconcileReport, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileWorkers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rep, err := s.Reconcile(gctx, id)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
