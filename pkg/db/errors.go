package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
)

// SQLSTATE codes the services react to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerializationFailed = "40001"
	pgDeadlockDetected    = "40P01"
)

// sqlState extracts the SQLSTATE and constraint from either postgres driver.
func sqlState(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

// IsUniqueViolation reports whether err is a unique constraint violation.
// Postgres errors match by SQLSTATE; sqlite (tests) by message. When
// constraintName is set it must match as well.
func IsUniqueViolation(err error, constraintName string) bool {
	return isViolation(err, pgUniqueViolation, constraintName, "UNIQUE constraint failed", "duplicate key value")
}

func IsForeignKeyViolation(err error) bool {
	return isViolation(err, pgForeignKeyViolation, "", "FOREIGN KEY constraint failed")
}

func IsCheckViolation(err error, constraintName string) bool {
	return isViolation(err, pgCheckViolation, constraintName, "CHECK constraint failed")
}

// IsRetryable is true for serialization failures and deadlocks, which
// succeed when the transaction is simply run again.
func IsRetryable(err error) bool {
	code, _, ok := sqlState(err)
	return ok && (code == pgSerializationFailed || code == pgDeadlockDetected)
}

func isViolation(err error, state, constraintName string, fallbacks ...string) bool {
	if err == nil {
		return false
	}
	if code, constraint, ok := sqlState(err); ok {
		return code == state && (constraintName == "" || constraint == constraintName)
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	for _, f := range fallbacks {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

// Translate maps a persistence error for entity onto the API error codes.
// Anything unrecognised is a dependency failure.
func Translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", entity)
	case IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" already exists")
	case IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, entity+" references a missing record")
	case IsCheckViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, entity+" violates a data constraint")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
	}
}

// TranslateDelete is Translate for deletes, where a foreign key violation
// means other rows still point at entity.
func TranslateDelete(err error, entity string) error {
	if err != nil && pkgerrors.As(err) == nil && IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" still has dependent records")
	}
	return Translate(err, entity)
}
