package db

import (
	"errors"
	"fmt"

	"driver-booking/internal/booking-service/core/myerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// mapErr turns driver errors into domain errors. notFound is returned for
// pgx.ErrNoRows and dup for unique violations.
func mapErr(err, notFound, dup error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return notFound
	case dup != nil && isUniqueViolation(err):
		return dup
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

var errUserNotFound = fmt.Errorf("user %w", myerrors.ErrNotFound)
