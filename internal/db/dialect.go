package db

import (
	"strings"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect struct {
	Name   string
	Driver string // database/sql driver name, empty for pgx

	types map[ColumnType]string

	// existsQuery counts tables named by its single placeholder.
	existsQuery string
}

// Postgres is the dialect of PostgreSQL (written through pgx).
var Postgres = Dialect{
	Name: "postgres",
	types: map[ColumnType]string{
		Text:      "TEXT",
		Integer:   "BIGINT",
		Real:      "DOUBLE PRECISION",
		Boolean:   "BOOLEAN",
		Timestamp: "TIMESTAMPTZ",
	},
}

// SQLite is the dialect of an embedded SQLite database.
var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite3",
	types: map[ColumnType]string{
		Text:      "TEXT",
		Integer:   "INTEGER",
		Real:      "REAL",
		Boolean:   "BOOLEAN",
		Timestamp: "TIMESTAMP",
	},
	existsQuery: `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
}

// DuckDB is the dialect of an embedded DuckDB database.
var DuckDB = Dialect{
	Name:   "duckdb",
	Driver: "duckdb",
	types: map[ColumnType]string{
		Text:      "VARCHAR",
		Integer:   "BIGINT",
		Real:      "DOUBLE",
		Boolean:   "BOOLEAN",
		Timestamp: "TIMESTAMPTZ",
	},
	existsQuery: `SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`,
}

// quoteIdent quotes an identifier for every supported dialect.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(d Dialect, t *Table, ifNotExists bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(quoteIdent(t.Name))
	b.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c.Name))
		b.WriteString(" ")
		b.WriteString(d.types[c.Type])
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(")")
	return b.String()
}

func dropTableSQL(name string) string {
	return "DROP TABLE IF EXISTS " + quoteIdent(name)
}

// insertSQL builds a single-row INSERT with ? placeholders.
func insertSQL(t *Table) string {
	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	return "INSERT INTO " + quoteIdent(t.Name) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}
