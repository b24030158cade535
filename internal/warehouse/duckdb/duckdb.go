// Package duckdb implements the warehouse contract on an embedded DuckDB
// database file. Replace loads build the new table under a staging name,
// fill it with batched prepared inserts, and swap it for the old table in
// the same transaction; DuckDB's transactional DDL makes the swap atomic.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/errkind"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

func init() {
	warehouse.Register("duckdb", func(ctx context.Context, cfg warehouse.Config) (warehouse.Warehouse, error) {
		return Open(ctx, cfg)
	})
}

type Store struct {
	db        *sql.DB
	batchSize int
}

func Open(ctx context.Context, cfg warehouse.Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("duckdb: path must not be empty")
	}
	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 500
	}
	return &Store{db: db, batchSize: batch}, nil
}

func (s *Store) Close() {
	_ = s.db.Close()
}

// Replace materializes the contract's table inside one transaction: a
// staging table is created and filled, then the previous table is dropped
// and staging renamed over it. Any failure rolls the whole transaction
// back, leaving the previously materialized table untouched.
func (s *Store) Replace(ctx context.Context, contract schema.Contract, rows []records.Record) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errkind.New(errkind.Write, "duckdb.replace", err)
	}
	defer tx.Rollback()

	staging := warehouse.StagingName(contract.Table)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(staging)); err != nil {
		return 0, errkind.New(errkind.Write, "duckdb.replace", err)
	}
	create := warehouse.BuildCreateTable(quote(staging), contract, quote, columnType)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, errkind.New(errkind.Write, "duckdb.replace", err)
	}

	cols := contract.Columns()
	total, err := warehouse.LoadBatches(ctx, cols,
		warehouse.RowsFromRecords(contract, rows), s.batchSize,
		func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
			return insertBatch(ctx, tx, staging, columns, batch)
		})
	if err != nil {
		return total, errkind.New(errkind.Write, "duckdb.replace", err)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(contract.Table)); err != nil {
		return total, errkind.New(errkind.Write, "duckdb.replace", err)
	}
	rename := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quote(staging), quote(contract.Table))
	if _, err := tx.ExecContext(ctx, rename); err != nil {
		return total, errkind.New(errkind.Write, "duckdb.replace", err)
	}
	if err := tx.Commit(); err != nil {
		return total, errkind.New(errkind.Write, "duckdb.replace", err)
	}
	return total, nil
}

// insertBatch runs a prepared single-row INSERT per row inside the load
// transaction. DuckDB has no wire-level bulk API through database/sql;
// the surrounding transaction keeps this fast enough for replace loads.
func insertBatch(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table),
		strings.Join(quoteAll(columns), ", "),
		strings.Join(placeholders, ", "),
	)
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, fmt.Errorf("insert: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

func (s *Store) Select(ctx context.Context, table string) ([]records.Record, error) {
	contract, ok := schema.ByTable(table)
	if !ok {
		return nil, fmt.Errorf("duckdb: unknown table %q", table)
	}
	cols := contract.Columns()
	// DECIMAL columns come back as a driver-specific struct through
	// database/sql; cast them to DOUBLE so every backend returns plain
	// scalar types.
	exprs := make([]string, len(contract.Fields))
	for i, f := range contract.Fields {
		if f.Kind == schema.KindDecimal {
			exprs[i] = fmt.Sprintf("CAST(%s AS DOUBLE) AS %s", quote(f.Name), quote(f.Name))
		} else {
			exprs[i] = quote(f.Name)
		}
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), quote(table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("duckdb: select %s: %w", table, err)
	}
	defer rows.Close()

	var out []records.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("duckdb: scan %s: %w", table, err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("duckdb: select %s: %w", table, err)
	}
	return out, nil
}

func columnType(f schema.Field) string {
	switch f.Kind {
	case schema.KindInt:
		return "BIGINT"
	case schema.KindFloat:
		return "DOUBLE"
	case schema.KindDecimal:
		return "DECIMAL(12,2)"
	case schema.KindBool:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

func quote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quote(c)
	}
	return out
}
