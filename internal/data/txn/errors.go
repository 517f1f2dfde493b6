package txn

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

// MapError translates infrastructure failures into engine error codes so
// services can branch on domain.CodeOf instead of driver details.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var engErr *domain.Error
	if errors.As(err, &engErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.Wrap(domain.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Wrap(domain.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.Wrap(domain.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domain.Wrap(domain.CodeConflict, op, err) // unique_violation
		case "23503":
			return domain.Wrap(domain.CodeConflict, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return domain.Wrap(domain.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"), strings.Contains(msg, "already exists"):
		return domain.Wrap(domain.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"):
		return domain.Wrap(domain.CodeRetryable, op, err)
	default:
		return domain.Wrap(domain.CodeInternal, op, err)
	}
}
