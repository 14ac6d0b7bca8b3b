package repo

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrForeignKey is returned when a write violates a foreign key, e.g. an
// answer pointing at a question that is gone, or deleting a question that
// still has answers. The driver error is kept in the chain.
var ErrForeignKey = errors.New("foreign key violation")

// pgForeignKeyViolation is SQLSTATE 23503.
const pgForeignKeyViolation = "23503"

// classify maps driver-specific constraint errors onto the package sentinels.
// Other errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isForeignKeyViolation(err) {
		return &fkError{cause: err}
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	// glebarez/sqlite reports constraint failures as plain text.
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

// fkError matches ErrForeignKey while still unwrapping to the driver error.
type fkError struct{ cause error }

func (e *fkError) Error() string { return ErrForeignKey.Error() + ": " + e.cause.Error() }

func (e *fkError) Is(target error) bool { return target == ErrForeignKey }

func (e *fkError) Unwrap() error { return e.cause }
