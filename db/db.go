// Package db provides database access behind a small driver-neutral
// interface.
//
// Design decisions:
//   - Conn is an interface so the core pipeline stays unaware of engines;
//     postgres (pgx pool, optionally through an SSH tunnel) and sqlite
//     (modernc, pure Go) are the built-in drivers.
//   - All operations accept a context and return errors, never log or print.
//   - Execute returns a single Result shape for both reads and writes:
//     reads populate Columns/Rows, writes populate Affected.
package db

import (
	"context"
	"fmt"

	"github.com/askdb/askdb/config"
)

// Conn is one live database connection.
type Conn interface {
	// IntrospectSchema reads tables, columns, and relationships.
	IntrospectSchema(ctx context.Context) (*Schema, error)

	// Execute runs a SQL statement. Reads return rows, writes return an
	// affected count; the statement's leading keyword decides which path
	// is taken.
	Execute(ctx context.Context, sql string) (*Result, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the connection (and any SSH tunnel behind it).
	Close()
}

// Schema describes a database's structure for LLM context building.
type Schema struct {
	Database string
	Tables   []Table
}

// Table is one table with its columns and relationships.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
	Indexes     []Index
}

// Column describes a single column.
type Column struct {
	Name       string
	DataType   string
	Nullable   bool
	Default    string
	PrimaryKey bool
}

// ForeignKey describes one outgoing relationship.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Index describes a secondary index by name and definition.
type Index struct {
	Name       string
	Definition string
}

// Result holds the output of one executed statement.
type Result struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	Affected int64
	HasRows  bool // true when the statement produced a row set
}

// Connect opens a connection for the named database config.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (Conn, error) {
	switch cfg.Driver {
	case "postgres", "":
		return connectPostgres(ctx, cfg)
	case "sqlite":
		return connectSQLite(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q (supported: postgres, sqlite)", cfg.Driver)
	}
}
