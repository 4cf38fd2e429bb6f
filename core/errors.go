package core

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when a question is blank after mode-marker
// stripping.
var ErrEmptyQuery = errors.New("empty query")

// UnknownDatabaseError names a database that is not in the configuration.
type UnknownDatabaseError struct {
	Name  string
	Known []string
}

func (e *UnknownDatabaseError) Error() string {
	return fmt.Sprintf("unknown database %q (configured: %v)", e.Name, e.Known)
}

// UnknownProviderError names an LLM provider that is not in the
// configuration.
type UnknownProviderError struct {
	Name  string
	Known []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown LLM provider %q (configured: %v)", e.Name, e.Known)
}

// InvalidModeError reports a mode name outside sql/ddl/crud.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q (valid: sql, ddl, crud)", e.Mode)
}

// SchemaTrainingError wraps a failure while introspecting or flattening a
// database schema. The cache is left untouched when training fails.
type SchemaTrainingError struct {
	Database string
	Err      error
}

func (e *SchemaTrainingError) Error() string {
	return fmt.Sprintf("schema training for %s: %v", e.Database, e.Err)
}

func (e *SchemaTrainingError) Unwrap() error { return e.Err }
