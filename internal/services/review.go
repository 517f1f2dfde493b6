package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

// ReviewInput is a servant's decision on a pending record. AdjustedPoints
// is optional and only meaningful on approval; when nil the requested
// amount is awarded as-is.
type ReviewInput struct {
	Decision       domain.RecordStatus `json:"decision"`
	ReviewNotes    string              `json:"review_notes"`
	AdjustedPoints *int                `json:"adjusted_points,omitempty"`
}

type ReviewService interface {
	Review(ctx context.Context, reviewerID uuid.UUID, recordID uuid.UUID, in ReviewInput) (*domain.ActivityRecord, error)
}

type reviewService struct {
	recordRepo repos.RecordRepo
	userRepo   repos.UserRepo
	ledger     LedgerService
	runner     txn.Runner
	policy     *Policy
	log        *logger.Logger
}

func NewReviewService(
	recordRepo repos.RecordRepo,
	userRepo repos.UserRepo,
	ledger LedgerService,
	runner txn.Runner,
	policy *Policy,
	baseLog *logger.Logger,
) ReviewService {
	return &reviewService{
		recordRepo: recordRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		runner:     runner,
		policy:     policy,
		log:        baseLog.With("service", "ReviewService"),
	}
}

func (s *reviewService) Review(ctx context.Context, reviewerID uuid.UUID, recordID uuid.UUID, in ReviewInput) (*domain.ActivityRecord, error) {
	const op = "ReviewService.Review"

	if !in.Decision.ReviewDecision() {
		return nil, domain.NewError(domain.CodeValidation, op,
			"decision must be approved, rejected or needs_revision", nil)
	}
	notes := strings.TrimSpace(in.ReviewNotes)
	if in.Decision != domain.RecordApproved && notes == "" {
		return nil, domain.NewError(domain.CodeValidation, op,
			fmt.Sprintf("review notes are required for %s", in.Decision), nil)
	}
	if in.AdjustedPoints != nil && in.Decision != domain.RecordApproved {
		return nil, domain.NewError(domain.CodeValidation, op,
			"adjusted points only apply to approvals", nil)
	}

	reviewer, err := s.userRepo.GetByID(ctx, nil, reviewerID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if !reviewer.CanReview() {
		return nil, domain.NewError(domain.CodeValidation, op, "reviewer lacks review privileges", nil)
	}

	var reviewed *domain.ActivityRecord
	err = s.runner.InTx(ctx, func(tx *gorm.DB) error {
		rec, err := s.recordRepo.GetByID(ctx, tx, recordID)
		if err != nil {
			return txn.MapError(op, err)
		}
		if rec == nil {
			return domain.NewError(domain.CodeNotFound, op, "record not found", nil)
		}
		if rec.OwnerID == reviewerID {
			return domain.NewError(domain.CodeValidation, op, "reviewers may not review their own records", nil)
		}
		if rec.Status.Terminal() {
			return domain.NewError(domain.CodeInvalidState, op,
				fmt.Sprintf("record already %s", rec.Status), nil)
		}

		awarded := rec.RequestedPoints
		if in.Decision == domain.RecordApproved && in.AdjustedPoints != nil {
			awarded = *in.AdjustedPoints
			if awarded < 0 {
				return domain.NewError(domain.CodeValidation, op, "adjusted points may not be negative", nil)
			}
			if max := s.policy.MaxAward(rec.RequestedPoints); awarded > max {
				return domain.NewError(domain.CodeValidation, op,
					fmt.Sprintf("adjusted points %d exceed cap %d", awarded, max), nil)
			}
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       in.Decision,
			"reviewer_id":  reviewerID,
			"reviewed_at":  now,
			"review_notes": notes,
		}
		if in.Decision == domain.RecordApproved {
			updates["awarded_points"] = awarded
		}
		rows, err := s.recordRepo.ApplyReview(ctx, tx, recordID, updates)
		if err != nil {
			return txn.MapError(op, err)
		}
		if rows == 0 {
			// The record left pending between our read and the guarded
			// update: another reviewer decided first.
			return domain.NewError(domain.CodeInvalidState, op,
				"record was reviewed concurrently", nil)
		}

		rec.Status = in.Decision
		rec.ReviewerID = &reviewerID
		rec.ReviewedAt = &now
		rec.ReviewNotes = notes
		if in.Decision == domain.RecordApproved {
			rec.AwardedPoints = &awarded
			if err := s.ledger.Credit(ctx, tx, rec, reviewerID, awarded); err != nil {
				return err
			}
		}
		reviewed = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("record reviewed",
		"record_id", recordID,
		"reviewer_id", reviewerID,
		"decision", in.Decision,
	)
	return reviewed, nil
}
