package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yourorg/tag-service/internal/model"

	"github.com/jackc/pgconn"
)

// Postgres SQLSTATE codes the repositories react to.
const (
	sqlstateUniqueViolation      = "23505"
	sqlstateSerializationFailure = "40001"
)

func isSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isUniqueViolation(err error) bool {
	return isSQLState(err, sqlstateUniqueViolation)
}

func isSerializationFailure(err error) bool {
	return isSQLState(err, sqlstateSerializationFailure)
}

// isTransient reports whether the error looks like a connection-level
// failure worth one retry, as opposed to a business outcome or a statement
// the database actually rejected.
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset")
}

// mapInfra converts low-level store failures into the Timeout/Unavailable
// taxonomy. Business errors and nil pass through untouched.
func mapInfra(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrTimeout, err)
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %v", model.ErrUnavailable, err)
	}
	return err
}

// escapeLike escapes LIKE metacharacters so a search query matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
