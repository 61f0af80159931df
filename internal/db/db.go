// Package db persists snapshot tables for the history warehouse and answers
// the read queries the pipeline and report server need.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink writes snapshots to PostgreSQL through a pgx connection pool.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new database connection pool.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresSink{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

// HasTable reports whether table exists in the search path.
func (s *PostgresSink) HasTable(ctx context.Context, table string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return exists, nil
}

// Write persists t in a single transaction, bulk loading rows with COPY.
func (s *PostgresSink) Write(ctx context.Context, t *Table, policy Policy) error {
	if err := t.validate(); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	switch policy {
	case PolicyFail:
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, t.Name).Scan(&exists); err != nil {
			return fmt.Errorf("checking table %s: %w", t.Name, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrTableExists, t.Name)
		}
		if _, err := tx.Exec(ctx, createTableSQL(Postgres, t, false)); err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name, err)
		}
	case PolicyReplace:
		if _, err := tx.Exec(ctx, dropTableSQL(t.Name)); err != nil {
			return fmt.Errorf("dropping table %s: %w", t.Name, err)
		}
		if _, err := tx.Exec(ctx, createTableSQL(Postgres, t, false)); err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name, err)
		}
	case PolicyAppend:
		if _, err := tx.Exec(ctx, createTableSQL(Postgres, t, true)); err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	if len(t.Rows) > 0 {
		_, err := tx.CopyFrom(ctx, pgx.Identifier{t.Name}, t.ColumnNames(), pgx.CopyFromRows(t.Rows))
		if err != nil {
			return fmt.Errorf("copying rows into %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query runs a read query and buffers every row.
func (s *PostgresSink) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	res := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		res.Rows = append(res.Rows, values)
	}
	return res, rows.Err()
}
