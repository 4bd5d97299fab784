package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"seedgen/sink"
)

type MysqlConfig struct {
	DbHost     string
	Database   string
	DbPort     int
	DbUser     string
	DbPassword string
}

type MysqlSink struct {
	db *sql.DB
}

func OpenMysqlSink(cfg MysqlConfig) (*MysqlSink, error) {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.DbUser, cfg.DbPassword, cfg.DbHost, cfg.DbPort, cfg.Database))
	if err != nil {
		return nil, err
	}
	return &MysqlSink{db}, nil
}

func (p *MysqlSink) Prepare(ctx context.Context, tables []sink.TableSchema) error {
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

func (p *MysqlSink) WriteBatch(ctx context.Context, rows []sink.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, chunk := range sink.ChunkRows(rows, 10000) {
		// MySQL's multi-row INSERT shares the sqlite placeholder style.
		query := sink.BuildInsert(sink.DialectQuestion, chunk[0].Table(), chunk[0].Columns(), len(chunk))
		if _, err := tx.ExecContext(ctx, query, sink.FlattenValues(chunk)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert into %s: %w", chunk[0].Table(), err)
		}
	}
	return tx.Commit()
}

func (p *MysqlSink) CreateIndexes(ctx context.Context, tables []sink.TableSchema) error {
	for _, t := range tables {
		for _, stmt := range t.Indexes {
			if _, err := p.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

func (p *MysqlSink) Close() error {
	return p.db.Close()
}
