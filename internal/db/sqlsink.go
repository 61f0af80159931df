package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
)

// SQLSink writes snapshots to an embedded engine through database/sql.
type SQLSink struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens an embedded SQLite or DuckDB database at dsn.
func OpenSQL(ctx context.Context, d Dialect, dsn string) (*SQLSink, error) {
	conn, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d.Name, err)
	}

	// Embedded engines have a single writer; one connection also keeps an
	// in-memory database alive for the lifetime of the sink.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging %s database: %w", d.Name, err)
	}

	return NewSQLSink(conn, d), nil
}

// NewSQLSink wraps an already-opened database.
func NewSQLSink(conn *sql.DB, d Dialect) *SQLSink {
	return &SQLSink{db: conn, dialect: d}
}

// Close closes the database.
func (s *SQLSink) Close() error {
	return s.db.Close()
}

// HasTable reports whether table exists.
func (s *SQLSink) HasTable(ctx context.Context, table string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.dialect.existsQuery, table).Scan(&n); err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return n > 0, nil
}

// Write persists t in a single transaction.
func (s *SQLSink) Write(ctx context.Context, t *Table, policy Policy) error {
	if err := t.validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	switch policy {
	case PolicyFail:
		var n int
		if err := tx.QueryRowContext(ctx, s.dialect.existsQuery, t.Name).Scan(&n); err != nil {
			return fmt.Errorf("checking table %s: %w", t.Name, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", ErrTableExists, t.Name)
		}
		if _, err := tx.ExecContext(ctx, createTableSQL(s.dialect, t, false)); err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name, err)
		}
	case PolicyReplace:
		if _, err := tx.ExecContext(ctx, dropTableSQL(t.Name)); err != nil {
			return fmt.Errorf("dropping table %s: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx, createTableSQL(s.dialect, t, false)); err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name, err)
		}
	case PolicyAppend:
		if _, err := tx.ExecContext(ctx, createTableSQL(s.dialect, t, true)); err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	if len(t.Rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertSQL(t))
		if err != nil {
			return fmt.Errorf("preparing insert into %s: %w", t.Name, err)
		}
		defer stmt.Close()

		for i, row := range t.Rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("inserting row %d into %s: %w", i, t.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query runs a read query and buffers every row.
func (s *SQLSink) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		res.Rows = append(res.Rows, values)
	}
	return res, rows.Err()
}
