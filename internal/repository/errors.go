package repository

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// IsTransient reports whether err is worth one retry: lost connections,
// serialization failures, deadlocks and server restarts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "57P01", "53300":
			return true
		}
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "08"
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isIdentityViolation reports a unique violation on the active identity
// index, as opposed to the primary key or any other constraint.
func isIdentityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == models.IdentityIndexName
}
