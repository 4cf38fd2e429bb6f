// sqlite.go implements Conn for SQLite files via the pure-Go modernc
// driver, so local databases work without cgo or a server.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/askdb/askdb/config"
	_ "modernc.org/sqlite"
)

type sqliteConn struct {
	db *sql.DB
}

var _ Conn = (*sqliteConn)(nil)

func connectSQLite(ctx context.Context, cfg config.DatabaseConfig) (Conn, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite database %q: path is required", cfg.Name)
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, &Error{Kind: KindNotFound, Err: fmt.Errorf("sqlite file %s: %w", cfg.Path, err)}
	}

	handle, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := handle.PingContext(ctx); err != nil {
		handle.Close()
		return nil, wrapError(err)
	}
	return &sqliteConn{db: handle}, nil
}

func (c *sqliteConn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return wrapError(err)
	}
	return nil
}

func (c *sqliteConn) Close() {
	c.db.Close()
}

func (c *sqliteConn) Execute(ctx context.Context, query string) (*Result, error) {
	if !returnsRows(query) {
		res, err := c.db.ExecContext(ctx, query)
		if err != nil {
			return nil, wrapError(err)
		}
		affected, _ := res.RowsAffected()
		return &Result{Affected: affected}, nil
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapError(err)
	}

	result := &Result{Columns: cols, HasRows: true}
	values := make([]any, len(cols))
	scanners := make([]any, len(cols))
	for i := range values {
		scanners[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanners...); err != nil {
			return nil, wrapError(err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			switch val := v.(type) {
			case nil:
				row[i] = ""
			case []byte:
				row[i] = string(val)
			default:
				row[i] = fmt.Sprintf("%v", val)
			}
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

func (c *sqliteConn) IntrospectSchema(ctx context.Context) (*Schema, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, wrapError(err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, wrapError(err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	schema := &Schema{}
	for _, name := range names {
		table, err := c.describeTable(ctx, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, *table)
	}
	return schema, nil
}

func (c *sqliteConn) describeTable(ctx context.Context, name string) (*Table, error) {
	t := &Table{Name: name}

	// PRAGMA does not support placeholders; table names come from
	// sqlite_master, not user input.
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name))
	if err != nil {
		return nil, wrapError(err)
	}
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.DataType, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return nil, wrapError(err)
		}
		col.Nullable = notNull == 0
		col.Default = dflt.String
		col.PrimaryKey = pk > 0
		t.Columns = append(t.Columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	rows, err = c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", name))
	if err != nil {
		return nil, wrapError(err)
	}
	for rows.Next() {
		var (
			id, seq            int
			refTable           string
			from, to           sql.NullString
			onUpdate, onDelete string
			match              string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			rows.Close()
			return nil, wrapError(err)
		}
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
			Column:    from.String,
			RefTable:  refTable,
			RefColumn: to.String,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	rows, err = c.db.QueryContext(ctx, `
		SELECT name, COALESCE(sql, '') FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL
		ORDER BY name`, name)
	if err != nil {
		return nil, wrapError(err)
	}
	for rows.Next() {
		var idx Index
		if err := rows.Scan(&idx.Name, &idx.Definition); err != nil {
			rows.Close()
			return nil, wrapError(err)
		}
		t.Indexes = append(t.Indexes, idx)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	return t, nil
}
