package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"seedgen/sink"
)

type SqliteConfig struct {
	// Path of the database file, created if absent.
	Path string
}

// SqliteSink is the embedded analytical store used by default: a single
// database file that the transformation layer queries after the run.
type SqliteSink struct {
	db *sql.DB
}

func OpenSqliteSink(cfg SqliteConfig) (*SqliteSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite sink requires a database path")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Single writer; the pipeline serializes writes per table anyway and
	// sqlite serializes them globally.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &SqliteSink{db: db}, nil
}

func (p *SqliteSink) Prepare(ctx context.Context, tables []sink.TableSchema) error {
	for _, t := range tables {
		if _, err := p.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+t.Name); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
		}
		if _, err := p.db.ExecContext(ctx, t.CreateSQL); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (p *SqliteSink) WriteBatch(ctx context.Context, rows []sink.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// sqlite caps bound variables at 999 per statement.
	for _, chunk := range sink.ChunkRows(rows, 900) {
		query := sink.BuildInsert(sink.DialectQuestion, chunk[0].Table(), chunk[0].Columns(), len(chunk))
		if _, err := tx.ExecContext(ctx, query, sink.FlattenValues(chunk)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert into %s: %w", chunk[0].Table(), err)
		}
	}
	return tx.Commit()
}

func (p *SqliteSink) CreateIndexes(ctx context.Context, tables []sink.TableSchema) error {
	for _, t := range tables {
		for _, stmt := range t.Indexes {
			if _, err := p.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

func (p *SqliteSink) Close() error {
	return p.db.Close()
}
