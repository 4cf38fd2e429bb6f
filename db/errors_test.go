package db

import (
	"errors"
	"testing"

	"github.com/askdb/askdb/ssh"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestWrapErrorClassifiesTunnelFailures(t *testing.T) {
	tests := []struct {
		op   string
		want ErrorKind
	}{
		{"auth", KindAuth},
		{"dial", KindNetwork},
		{"listen", KindNetwork},
	}
	for _, tt := range tests {
		wrapped := wrapError(&ssh.Error{Op: tt.op, Err: errors.New("boom")})
		if wrapped.Kind != tt.want {
			t.Errorf("op %q: Kind = %q, want %q", tt.op, wrapped.Kind, tt.want)
		}
	}
}

func TestWrapErrorClassifiesSQLStates(t *testing.T) {
	tests := []struct {
		code string
		want ErrorKind
	}{
		{"28P01", KindAuth},       // invalid_password
		{"42P01", KindNotFound},   // undefined_table
		{"42601", KindSyntax},     // syntax_error
		{"42501", KindPermission}, // insufficient_privilege
		{"23505", KindConstraint}, // unique_violation
		{"08006", KindNetwork},    // connection_failure
	}
	for _, tt := range tests {
		wrapped := wrapError(&pgconn.PgError{Code: tt.code})
		if wrapped.Kind != tt.want {
			t.Errorf("code %s: Kind = %q, want %q", tt.code, wrapped.Kind, tt.want)
		}
	}
}
