package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresSink connects to WAREHOUSE_TEST_POSTGRES_URL, skipping when unset.
func newPostgresSink(t *testing.T) *PostgresSink {
	t.Helper()
	url := os.Getenv("WAREHOUSE_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("WAREHOUSE_TEST_POSTGRES_URL not set")
	}

	sink, err := NewPostgres(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

// scratchTable returns a uniquely named table dropped after the test.
func scratchTable(t *testing.T, sink *PostgresSink, rows ...[]any) *Table {
	t.Helper()
	name := "test_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		sink.pool.Exec(context.Background(), dropTableSQL(name))
	})

	return &Table{
		Name: name,
		Columns: []Column{
			{Name: "id", Type: Text},
			{Name: "n", Type: Integer, Nullable: true},
			{Name: "score", Type: Real},
			{Name: "ok", Type: Boolean},
			{Name: "at", Type: Timestamp},
		},
		Rows: rows,
	}
}

func pgRow(id string, n any) []any {
	return []any{id, n, 0.5, true, time.Date(2023, 6, 9, 0, 0, 0, 0, time.UTC)}
}

func TestPostgresSink_ReplaceCopiesRows(t *testing.T) {
	ctx := context.Background()
	sink := newPostgresSink(t)

	tbl := scratchTable(t, sink, pgRow("a", int64(1)), pgRow("b", nil))
	require.NoError(t, sink.Write(ctx, tbl, PolicyReplace))

	tbl.Rows = [][]any{pgRow("c", int64(3))}
	require.NoError(t, sink.Write(ctx, tbl, PolicyReplace))

	res, err := sink.Query(ctx, fmt.Sprintf(`SELECT id, n FROM %s ORDER BY id`, quoteIdent(tbl.Name)))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	id, err := AsString(res.Rows[0][0])
	require.NoError(t, err)
	assert.Equal(t, "c", id)
}

func TestPostgresSink_AppendAndFail(t *testing.T) {
	ctx := context.Background()
	sink := newPostgresSink(t)

	tbl := scratchTable(t, sink, pgRow("a", int64(1)))

	exists, err := sink.HasTable(ctx, tbl.Name)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, sink.Write(ctx, tbl, PolicyFail))
	require.NoError(t, sink.Write(ctx, tbl, PolicyAppend))

	err = sink.Write(ctx, tbl, PolicyFail)
	assert.ErrorIs(t, err, ErrTableExists)

	exists, err = sink.HasTable(ctx, tbl.Name)
	require.NoError(t, err)
	assert.True(t, exists)

	res, err := sink.Query(ctx, `SELECT COUNT(*) FROM `+quoteIdent(tbl.Name))
	require.NoError(t, err)
	n, err := AsInt64(res.Rows[0][0])
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPostgresSink_Warehouse(t *testing.T) {
	ctx := context.Background()
	sink := newPostgresSink(t)

	history := []CleanEvent{
		{Platform: "iPhone", MsPlayed: 1000, TrackID: "t1", Datetime: time.Now(), StreamDate: "2023-06-08", StreamTime: "16:00:00", StreamYear: 2023, StreamMonth: 6, StreamDay: 8},
		{Platform: "TV", MsPlayed: 250, TrackID: "t2", Datetime: time.Now(), StreamDate: "2023-06-08", StreamTime: "16:00:00", StreamYear: 2023, StreamMonth: 6, StreamDay: 8},
	}
	require.NoError(t, sink.Write(ctx, CleanHistoryTable(history), PolicyReplace))
	t.Cleanup(func() { sink.pool.Exec(context.Background(), dropTableSQL(TableCleanHistory)) })

	listening, err := NewWarehouse(sink).TrackListening(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"t1": 1000, "t2": 250}, listening)
}
