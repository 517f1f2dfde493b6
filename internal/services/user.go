package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type userService struct {
	userRepo repos.UserRepo
	log      *logger.Logger
}

func NewUserService(userRepo repos.UserRepo, baseLog *logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: baseLog.With("service", "UserService")}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "UserService.GetByID"
	user, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if user == nil {
		return nil, domain.NewError(domain.CodeNotFound, op, "user not found", nil)
	}
	return user, nil
}
