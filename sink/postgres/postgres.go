package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"seedgen/sink"
)

type PostgresConfig struct {
	DbHost   string
	Database string
	DbPort   int
	DbUser   string
}

type PostgresSink struct {
	db *sql.DB
}

func OpenPostgresSink(cfg PostgresConfig) (*PostgresSink, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("postgresql://%s:@%s:%d/%s?sslmode=disable",
		cfg.DbUser, cfg.DbHost, cfg.DbPort, cfg.Database))
	if err != nil {
		return nil, err
	}
	return &PostgresSink{db}, nil
}

func (p *PostgresSink) Prepare(ctx context.Context, tables []sink.TableSchema) error {
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

func (p *PostgresSink) WriteBatch(ctx context.Context, rows []sink.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, chunk := range sink.ChunkRows(rows, 10000) {
		query := sink.BuildInsert(sink.DialectDollar, chunk[0].Table(), chunk[0].Columns(), len(chunk))
		if _, err := tx.ExecContext(ctx, query, sink.FlattenValues(chunk)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert into %s: %w", chunk[0].Table(), err)
		}
	}
	return tx.Commit()
}

func (p *PostgresSink) CreateIndexes(ctx context.Context, tables []sink.TableSchema) error {
	for _, t := range tables {
		for _, stmt := range t.Indexes {
			if _, err := p.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

func (p *PostgresSink) Close() error {
	return p.db.Close()
}
