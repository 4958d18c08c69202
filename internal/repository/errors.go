package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"rizq/internal/models"
	"rizq/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the store distinguishes.
const (
	sqlStateUniqueViolation       = "23505"
	sqlStateInsufficientPrivilege = "42501"
	sqlStateSerializationFailure  = "40001"
	sqlStateDeadlockDetected      = "40P01"
	sqlStateQueryCanceled         = "57014"
	sqlStateTooManyConnections    = "53300"
	sqlStateConnectionClass       = "08"
)

// ErrDuplicateClientID reports a second insert of a message with the same sender and client id.
var ErrDuplicateClientID = errors.New("message with this client id already exists")

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func isTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateQueryCanceled, sqlStateTooManyConnections:
			return true
		}
		return strings.HasPrefix(pgErr.Code, sqlStateConnectionClass)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isPermissionError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateInsufficientPrivilege
}

// translateError maps a raw store error into the AppError taxonomy.
// onUnique, when set, decides what a unique violation means for the caller;
// without it a unique violation is an internal error.
func translateError(op string, err error, onUnique func(error) error) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var out error
	switch {
	case isUniqueConstraintError(err) && onUnique != nil:
		out = onUnique(err)
	case isPermissionError(err):
		out = &models.AppError{Code: models.CodeForbidden, Message: "Permission denied by the store", Err: err}
	case isTransientError(err):
		out = models.NewTransientError(err)
	default:
		out = models.NewInternalError(err)
	}

	observability.StoreErrors.WithLabelValues(op, codeLabel(out)).Inc()
	return out
}

func codeLabel(err error) string {
	if code := models.ErrorCode(err); code != "" {
		return code
	}
	return "other"
}
