package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// CopyFn abstracts a backend's bulk insert primitive. Implementations insert
// the provided rows (aligned to 'columns' order) and return the number of
// rows inserted. Backends use their most efficient path: Postgres COPY,
// DuckDB prepared inserts inside the staging transaction.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches slices rows into batches of batchSize and calls copyFn per
// non-empty batch. It returns the total rows reported by copyFn and the
// first error encountered. Progress is logged per flush with instantaneous
// rows/sec.
func LoadBatches(ctx context.Context, columns []string, rows [][]any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int64
		start   = time.Now()
		last    = start
	)

	for off := 0; off < len(rows); off += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := copyFn(ctx, columns, rows[off:end])
		total += n
		if err != nil {
			return total, err
		}

		batches++
		now := time.Now()
		rps := float64(0)
		if d := now.Sub(last); d > 0 {
			rps = float64(n) / d.Seconds()
		}
		slog.Debug("loader: batch flushed",
			"batch", batches,
			"inserted", n,
			"total", total,
			"rps", int64(rps),
			"elapsed", now.Sub(start).Truncate(time.Millisecond).String(),
		)
		last = now
	}
	return total, nil
}

// RowsFromRecords orders each record's values by the contract's column
// order and converts them to driver-friendly types. Decimal values bind as
// float64: pgx's binary COPY has no string-to-numeric plan, and the DECIMAL
// columns round to two places on insert, which the charge values carry at
// most anyway.
func RowsFromRecords(contract schema.Contract, recs []records.Record) [][]any {
	cols := contract.Columns()
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = bindValue(rec[c])
		}
		rows[i] = row
	}
	return rows
}

func bindValue(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		return t.InexactFloat64()
	default:
		return v
	}
}
