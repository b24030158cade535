package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Snapshot is what one filtered query returns: the KPIs over the matching
// population, the per-contract breakdown, and the rows themselves.
type Snapshot struct {
	Filter     FilterSpec                   `json:"filter"`
	KPIs       KPIResult                    `json:"kpis"`
	ByContract []GroupKPI                   `json:"by_contract"`
	Rows       []schema.CustomerChurnRecord `json:"rows"`
}

// Service reads materialized churn rows and serves filtered aggregates.
type Service struct {
	wh  warehouse.Warehouse
	log *slog.Logger
}

func NewService(wh warehouse.Warehouse, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{wh: wh, log: log}
}

// GetFiltered loads the churn fact table, applies the filter, and computes
// the aggregates. Filtering happens in-process over the full table; the
// materialized table is the dashboard's working set and fits comfortably
// in memory.
func (s *Service) GetFiltered(ctx context.Context, f FilterSpec) (Snapshot, error) {
	if err := f.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("invalid filter: %w", err)
	}

	raw, err := s.wh.Select(ctx, schema.CustomerChurn.Table)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load churn rows: %w", err)
	}
	rows, err := typedRows(raw)
	if err != nil {
		return Snapshot{}, err
	}

	matched := f.Apply(rows)
	s.log.Debug("filtered churn rows", "total", len(rows), "matched", len(matched))

	return Snapshot{
		Filter:     f,
		KPIs:       Summarize(matched),
		ByContract: GroupByContract(matched),
		Rows:       matched,
	}, nil
}

func typedRows(raw []records.Record) ([]schema.CustomerChurnRecord, error) {
	out := make([]schema.CustomerChurnRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := schema.ChurnFromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
