package postgres

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lalith-99/heartfelt/internal/apperr"
)

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SQLSTATE codes we translate. See
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUndefinedTable     = "42P01"
	codeUndefinedColumn    = "42703"
	codeCheckViolation     = "23514"
	codeForeignKeyViolated = "23503"
	codeUniqueViolation    = "23505"
	codeAdminShutdown      = "57P01"
	codeCrashShutdown      = "57P02"
	codeCannotConnectNow   = "57P03"
)

// wrapErr annotates err with op and classifies it into the apperr taxonomy.
func wrapErr(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeCheckViolation:
			return &apperr.Error{Kind: apperr.ErrValidation, Message: "invalid input", Err: wrapped}
		case pgErr.Code == codeForeignKeyViolated:
			return &apperr.Error{Kind: apperr.ErrValidation, Message: "referenced user does not exist", Err: wrapped}
		case pgErr.Code == codeUniqueViolation:
			return &apperr.Error{Kind: apperr.ErrInvalidState, Message: "conflicting record", Err: wrapped}
		}
	}

	if isUnavailable(err) {
		return apperr.Unavailable(wrapped)
	}
	return wrapped
}

// isUnavailable reports whether err means the database cannot serve us at
// all, as opposed to rejecting one statement.
func isUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable, codeUndefinedColumn, codeAdminShutdown, codeCrashShutdown, codeCannotConnectNow:
			return true
		}
		// Class 08: connection exception.
		return strings.HasPrefix(pgErr.Code, "08")
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return pgconn.Timeout(err) || strings.Contains(err.Error(), "closed pool")
}
