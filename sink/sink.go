package sink

import (
	"context"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Row is one flat record ready for the destination store. Generator-only
// fields are stripped before a record becomes a Row.
type Row interface {
	// Table returns the logical destination table.
	Table() string

	// Key returns the partition key used by message-queue sinks.
	Key() string

	// Columns returns the column names in declaration order.
	Columns() []string

	// Values returns the column values, aligned with Columns.
	Values() []interface{}
}

// TableSchema describes one destination table for SQL sinks.
type TableSchema struct {
	Name      string
	CreateSQL string
	// Indexes holds complete CREATE INDEX statements, built after load.
	Indexes []string
}

// Sink writes generated batches to a destination. Prepare implements the
// per-run replace semantics: any previous content of the named tables is
// discarded. A batch passed to WriteBatch always targets a single table.
type Sink interface {
	Prepare(ctx context.Context, tables []TableSchema) error

	WriteBatch(ctx context.Context, rows []Row) error

	Close() error
}

// Indexer is implemented by SQL sinks that build per-table indexes once the
// load is complete.
type Indexer interface {
	CreateIndexes(ctx context.Context, tables []TableSchema) error
}

// Committer is implemented by sinks that buffer output and publish it only
// once the run has completed. A failed run never reaches Commit; Close then
// discards whatever was buffered.
type Committer interface {
	Commit(ctx context.Context) error
}

// RowToJSON renders a row as a JSON object keyed by column name.
func RowToJSON(r Row) ([]byte, error) {
	cols := r.Columns()
	vals := r.Values()
	m := make(map[string]interface{}, len(cols))
	for i, c := range cols {
		m[c] = vals[i]
	}
	return json.Marshal(m)
}

// ChunkRows splits a homogeneous batch so that no chunk exceeds maxParams
// bound parameters in a multi-row insert.
func ChunkRows(rows []Row, maxParams int) [][]Row {
	if len(rows) == 0 {
		return nil
	}
	perChunk := maxParams / len(rows[0].Columns())
	if perChunk < 1 {
		perChunk = 1
	}
	var chunks [][]Row
	for start := 0; start < len(rows); start += perChunk {
		end := start + perChunk
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
