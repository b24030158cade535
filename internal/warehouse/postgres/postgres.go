// Package postgres implements the warehouse contract on Postgres using
// pgx v5. Replace loads COPY into a staging table and swap it for the
// target inside one transaction; Postgres transactional DDL makes the
// swap atomic for concurrent readers.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/errkind"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

func init() {
	warehouse.Register("postgres", func(ctx context.Context, cfg warehouse.Config) (warehouse.Warehouse, error) {
		return Open(ctx, cfg)
	})
}

type Store struct {
	pool   *pgxpool.Pool
	schema string
}

func Open(ctx context.Context, cfg warehouse.Config) (*Store, error) {
	dsn := cfg.Credential.URI
	if dsn == "" {
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			cfg.Credential.User, cfg.Credential.Password, cfg.Host, port, cfg.Database)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	sch := cfg.Schema
	if sch == "" {
		sch = "public"
	}
	return &Store{pool: pool, schema: sch}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Replace builds the new table contents under a staging name, COPYs the
// rows in, and swaps staging over the target within the transaction. On
// any failure the transaction rolls back and the previous table survives.
func (s *Store) Replace(ctx context.Context, contract schema.Contract, rows []records.Record) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, errkind.New(errkind.Write, "postgres.replace", err)
	}
	defer tx.Rollback(ctx)

	staging := warehouse.StagingName(contract.Table)
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+s.fqn(staging)); err != nil {
		return 0, errkind.New(errkind.Write, "postgres.replace", err)
	}
	create := warehouse.BuildCreateTable(s.fqn(staging), contract, pgIdent, columnType)
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, errkind.New(errkind.Write, "postgres.replace", err)
	}

	total, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.schema, staging},
		contract.Columns(),
		pgx.CopyFromRows(warehouse.RowsFromRecords(contract, rows)),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			err = fmt.Errorf("copy into staging: %s (%s)", pgErr.Detail, pgErr.SQLState())
		} else {
			err = fmt.Errorf("copy into staging: %w", err)
		}
		return total, errkind.New(errkind.Write, "postgres.replace", err)
	}

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+s.fqn(contract.Table)); err != nil {
		return total, errkind.New(errkind.Write, "postgres.replace", err)
	}
	rename := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", s.fqn(staging), pgIdent(contract.Table))
	if _, err := tx.Exec(ctx, rename); err != nil {
		return total, errkind.New(errkind.Write, "postgres.replace", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return total, errkind.New(errkind.Write, "postgres.replace", err)
	}
	return total, nil
}

func (s *Store) Select(ctx context.Context, table string) ([]records.Record, error) {
	contract, ok := schema.ByTable(table)
	if !ok {
		return nil, fmt.Errorf("postgres: unknown table %q", table)
	}
	cols := contract.Columns()
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(mapIdent(cols), ", "), s.fqn(table))
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: select %s: %w", table, err)
	}
	defer rows.Close()

	var out []records.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", table, err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: select %s: %w", table, err)
	}
	return out, nil
}

func columnType(f schema.Field) string {
	switch f.Kind {
	case schema.KindInt:
		return "BIGINT"
	case schema.KindFloat:
		return "DOUBLE PRECISION"
	case schema.KindDecimal:
		return "NUMERIC(12,2)"
	case schema.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func (s *Store) fqn(table string) string {
	return pgIdent(s.schema) + "." + pgIdent(table)
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
