package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	ErrTableExists    = errors.New("table already exists")
	ErrUnknownPolicy  = errors.New("unknown write policy")
	ErrUnknownDriver  = errors.New("unknown database driver")
	ErrColumnMismatch = errors.New("row width does not match columns")
	ErrUnexpectedType = errors.New("unexpected column value type")
)

// ColumnType is the portable type of a snapshot column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Real
	Boolean
	Timestamp
)

// Column describes one column of a snapshot table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Table is a complete snapshot of one output table.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// validate checks every row has one value per column.
func (t *Table) validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: %s row %d has %d values, want %d",
				ErrColumnMismatch, t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// Policy decides what happens when the target table already exists.
type Policy string

const (
	PolicyFail    Policy = "fail"
	PolicyReplace Policy = "replace"
	PolicyAppend  Policy = "append"
)

// ParsePolicy converts a policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case PolicyFail, PolicyReplace, PolicyAppend:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Result holds the rows of a read query.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Sink persists snapshot tables and answers read queries.
type Sink interface {
	// Write persists t under policy.
	Write(ctx context.Context, t *Table, policy Policy) error
	// HasTable reports whether a snapshot table has been written.
	HasTable(ctx context.Context, table string) (bool, error)
	// Query runs a read query and buffers its rows.
	Query(ctx context.Context, query string, args ...any) (*Result, error)
	// Close releases the underlying connections.
	Close() error
}

// Open connects to the sink for driver: postgres, sqlite or duckdb.
func Open(ctx context.Context, driver, url string) (Sink, error) {
	switch driver {
	case "postgres", "postgresql", "pgx":
		return NewPostgres(ctx, url)
	case "sqlite", "sqlite3":
		return OpenSQL(ctx, SQLite, url)
	case "duckdb":
		return OpenSQL(ctx, DuckDB, url)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// AsString converts a scanned value to a string.
func AsString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%w: %T as string", ErrUnexpectedType, v)
}

// AsInt64 converts a scanned numeric value to an int64.
func AsInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %T as int64", ErrUnexpectedType, v)
}

// AsFloat64 converts a scanned numeric value to a float64.
func AsFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%w: %T as float64", ErrUnexpectedType, v)
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}
