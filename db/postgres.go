// postgres.go implements Conn for PostgreSQL on top of a pgx pool.
//
// SSH tunnel integration is handled transparently: if the config enables
// SSH, the tunnel is established first and pgx connects to the local
// endpoint.
package db

import (
	"context"
	"fmt"

	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/ssh"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresConn struct {
	pool   *pgxpool.Pool
	tunnel *ssh.Tunnel
	schema string // namespace to introspect, "public"
}

var _ Conn = (*postgresConn)(nil)

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig) (Conn, error) {
	conn := &postgresConn{schema: "public"}

	// If SSH tunnel is requested, set it up first.
	if cfg.SSH.Enabled {
		tunnel, err := ssh.NewTunnel(cfg.SSH, cfg.Host, cfg.Port)
		if err != nil {
			return nil, wrapError(err)
		}
		localAddr, err := tunnel.Start(ctx)
		if err != nil {
			return nil, wrapError(err)
		}
		conn.tunnel = tunnel

		// Override connection target with local tunnel endpoint
		cfg.Host = localAddr.Host
		cfg.Port = localAddr.Port
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		if conn.tunnel != nil {
			conn.tunnel.Stop()
		}
		return nil, wrapError(err)
	}

	// Verify the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		if conn.tunnel != nil {
			conn.tunnel.Stop()
		}
		return nil, wrapError(err)
	}

	conn.pool = pool
	return conn, nil
}

func (c *postgresConn) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return wrapError(err)
	}
	return nil
}

func (c *postgresConn) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.tunnel != nil {
		c.tunnel.Stop()
	}
}

func (c *postgresConn) Execute(ctx context.Context, sql string) (*Result, error) {
	if !returnsRows(sql) {
		tag, err := c.pool.Exec(ctx, sql)
		if err != nil {
			return nil, wrapError(err)
		}
		return &Result{Affected: tag.RowsAffected()}, nil
	}

	rows, err := c.pool.Query(ctx, sql)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	result := &Result{HasRows: true}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, wrapError(err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				row[i] = ""
				continue
			}
			row[i] = fmt.Sprintf("%v", v)
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

func (c *postgresConn) IntrospectSchema(ctx context.Context) (*Schema, error) {
	names, err := c.listTables(ctx)
	if err != nil {
		return nil, err
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

func (c *postgresConn) listTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	rows, err := c.pool.Query(ctx, query, c.schema)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapError(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}
	return names, nil
}

func (c *postgresConn) describeTable(ctx context.Context, table string) (*Table, error) {
	t := &Table{Name: table}

	colQuery := `
		SELECT c.column_name, c.data_type, c.is_nullable,
		       COALESCE(c.column_default, ''),
		       EXISTS (
		           SELECT 1
		           FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage kcu
		             ON kcu.constraint_name = tc.constraint_name
		            AND kcu.table_schema = tc.table_schema
		           WHERE tc.constraint_type = 'PRIMARY KEY'
		             AND tc.table_schema = c.table_schema
		             AND tc.table_name = c.table_name
		             AND kcu.column_name = c.column_name
		       )
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`
	rows, err := c.pool.Query(ctx, colQuery, c.schema, table)
	if err != nil {
		return nil, wrapError(err)
	}
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Default, &col.PrimaryKey); err != nil {
			rows.Close()
			return nil, wrapError(err)
		}
		col.Nullable = nullable == "YES"
		t.Columns = append(t.Columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	fkQuery := `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1 AND tc.table_name = $2`
	rows, err = c.pool.Query(ctx, fkQuery, c.schema, table)
	if err != nil {
		return nil, wrapError(err)
	}
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			rows.Close()
			return nil, wrapError(err)
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	idxQuery := `
		SELECT indexname, indexdef
		FROM pg_indexes
		WHERE schemaname = $1 AND tablename = $2
		ORDER BY indexname`
	rows, err = c.pool.Query(ctx, idxQuery, c.schema, table)
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
