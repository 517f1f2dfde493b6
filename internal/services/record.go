package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

// SubmitRecordInput carries a deacon's self-reported activity. Points are
// never accepted from the client; they derive from the category policy.
type SubmitRecordInput struct {
	Category        domain.RecordCategory `json:"category"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	OccurredOn      time.Time             `json:"occurred_on"`
	DurationMinutes *int                  `json:"duration_minutes,omitempty"`
	Location        string                `json:"location"`
	Notes           string                `json:"notes"`
}

type RecordService interface {
	Submit(ctx context.Context, ownerID uuid.UUID, in SubmitRecordInput) (*domain.ActivityRecord, error)
	Get(ctx context.Context, requesterID uuid.UUID, requesterRole string, id uuid.UUID) (*domain.ActivityRecord, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.ActivityRecord, error)
	ListPending(ctx context.Context) ([]*domain.ActivityRecord, error)
}

type recordService struct {
	recordRepo repos.RecordRepo
	policy     *Policy
	log        *logger.Logger
}

func NewRecordService(recordRepo repos.RecordRepo, policy *Policy, baseLog *logger.Logger) RecordService {
	return &recordService{
		recordRepo: recordRepo,
		policy:     policy,
		log:        baseLog.With("service", "RecordService"),
	}
}

func (s *recordService) Submit(ctx context.Context, ownerID uuid.UUID, in SubmitRecordInput) (*domain.ActivityRecord, error) {
	const op = "RecordService.Submit"
	if ownerID == uuid.Nil {
		return nil, domain.NewError(domain.CodeValidation, op, "owner id is required", nil)
	}
	if !in.Category.Valid() {
		return nil, domain.NewError(domain.CodeValidation, op, "unknown category", nil)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.NewError(domain.CodeValidation, op, "title is required", nil)
	}
	if in.OccurredOn.IsZero() {
		return nil, domain.NewError(domain.CodeValidation, op, "occurred_on is required", nil)
	}
	now := time.Now().UTC()
	if in.OccurredOn.After(now) {
		return nil, domain.NewError(domain.CodeValidation, op, "occurred_on may not be in the future", nil)
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return nil, domain.NewError(domain.CodeValidation, op, "duration_minutes must be positive", nil)
	}
	requested, ok := s.policy.PointsFor(in.Category)
	if !ok {
		return nil, domain.NewError(domain.CodeValidation, op, "category has no point value", nil)
	}

	rec := &domain.ActivityRecord{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Category:        in.Category,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		OccurredOn:      in.OccurredOn,
		DurationMinutes: in.DurationMinutes,
		Location:        strings.TrimSpace(in.Location),
		Notes:           strings.TrimSpace(in.Notes),
		RequestedPoints: requested,
		Status:          domain.RecordPending,
		SubmittedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.recordRepo.Create(ctx, nil, []*domain.ActivityRecord{rec})
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	s.log.Info("activity record submitted",
		"record_id", rec.ID,
		"owner_id", ownerID,
		"category", rec.Category,
		"requested_points", rec.RequestedPoints,
	)
	return created[0], nil
}

func (s *recordService) Get(ctx context.Context, requesterID uuid.UUID, requesterRole string, id uuid.UUID) (*domain.ActivityRecord, error) {
	const op = "RecordService.Get"
	rec, err := s.recordRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if rec == nil {
		return nil, domain.NewError(domain.CodeNotFound, op, "record not found", nil)
	}
	if rec.OwnerID != requesterID && requesterRole == domain.RoleDeacon {
		return nil, domain.NewError(domain.CodeNotFound, op, "record not found", nil)
	}
	return rec, nil
}

func (s *recordService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.ActivityRecord, error) {
	const op = "RecordService.ListByOwner"
	out, err := s.recordRepo.ListByOwner(ctx, nil, ownerID)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	return out, nil
}

func (s *recordService) ListPending(ctx context.Context) ([]*domain.ActivityRecord, error) {
	const op = "RecordService.ListPending"
	out, err := s.recordRepo.ListByStatus(ctx, nil, []domain.RecordStatus{domain.RecordPending})
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	return out, nil
}
