package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/askdb/askdb/ssh"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies a database failure.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindNetwork    ErrorKind = "network"
	KindNotFound   ErrorKind = "not_found"
	KindSyntax     ErrorKind = "syntax"
	KindPermission ErrorKind = "permission"
	KindConstraint ErrorKind = "constraint"
)

// Error is a classified database failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrapError classifies an underlying driver error. Postgres errors are
// mapped by SQLSTATE class; everything else falls back by message shape.
func wrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Kind: kindForSQLState(pgErr.Code), Err: err}
	}

	var sshErr *ssh.Error
	if errors.As(err, &sshErr) {
		if sshErr.Op == "auth" {
			return &Error{Kind: KindAuth, Err: err}
		}
		return &Error{Kind: KindNetwork, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindNetwork, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "password") || strings.Contains(msg, "authentication"):
		return &Error{Kind: KindAuth, Err: err}
	case strings.Contains(msg, "syntax"):
		return &Error{Kind: KindSyntax, Err: err}
	case strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist"):
		return &Error{Kind: KindNotFound, Err: err}
	case strings.Contains(msg, "constraint"):
		return &Error{Kind: KindConstraint, Err: err}
	default:
		return &Error{Kind: KindNetwork, Err: err}
	}
}

// kindForSQLState maps a PostgreSQL SQLSTATE to an ErrorKind.
func kindForSQLState(code string) ErrorKind {
	switch {
	case strings.HasPrefix(code, "28"): // invalid_authorization_specification
		return KindAuth
	case code == "3D000" || code == "42P01" || code == "42703": // db/table/column missing
		return KindNotFound
	case code == "42601": // syntax_error
		return KindSyntax
	case code == "42501": // insufficient_privilege
		return KindPermission
	case strings.HasPrefix(code, "23"): // integrity_constraint_violation
		return KindConstraint
	case strings.HasPrefix(code, "08"): // connection_exception
		return KindNetwork
	default:
		return KindNetwork
	}
}
