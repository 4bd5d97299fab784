package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seedgen/sink"
)

type testRow struct {
	id   int64
	name string
}

func (r testRow) Table() string         { return "things" }
func (r testRow) Key() string           { return "k" }
func (r testRow) Columns() []string     { return []string{"id", "name"} }
func (r testRow) Values() []interface{} { return []interface{}{r.id, r.name} }

var testSchema = []sink.TableSchema{{
	Name:      "things",
	CreateSQL: "CREATE TABLE things (id BIGINT NOT NULL, name TEXT)",
	Indexes:   []string{"CREATE INDEX idx_things_id ON things(id)"},
}}

func TestSqliteSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSqliteSink(SqliteConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Prepare(ctx, testSchema))

	rows := make([]sink.Row, 0, 100)
	for i := int64(1); i <= 100; i++ {
		rows = append(rows, testRow{id: i, name: "thing"})
	}
	require.NoError(t, s.WriteBatch(ctx, rows))
	require.NoError(t, s.CreateIndexes(ctx, testSchema))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM things").Scan(&count))
	assert.Equal(t, 100, count)
}

func TestSqliteSinkPrepareReplacesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSqliteSink(SqliteConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Prepare(ctx, testSchema))
	require.NoError(t, s.WriteBatch(ctx, []sink.Row{testRow{id: 1, name: "stale"}}))

	// A second Prepare discards the previous run's contents.
	require.NoError(t, s.Prepare(ctx, testSchema))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM things").Scan(&count))
	assert.Zero(t, count)
}

func TestSqliteSinkRequiresPath(t *testing.T) {
	_, err := OpenSqliteSink(SqliteConfig{})
	require.Error(t, err)
}
