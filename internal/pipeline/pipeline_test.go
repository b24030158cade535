package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/config"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/errkind"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// stubConnector returns canned rows or a canned error, keyed by source name.
type stubConnector struct {
	rows []records.Record
	err  error
}

func (s stubConnector) Extract(ctx context.Context) ([]records.Record, connector.Manifest, error) {
	if s.err != nil {
		return nil, connector.Manifest{}, s.err
	}
	return s.rows, connector.NewManifest("stub", nil, s.rows), nil
}

var (
	stubMu   sync.Mutex
	stubSrcs = map[string]stubConnector{}
)

func init() {
	connector.Register("stub", func(cfg connector.Config) (connector.Connector, error) {
		stubMu.Lock()
		defer stubMu.Unlock()
		return stubSrcs[cfg.Name], nil
	})
}

func setStub(name string, c stubConnector) {
	stubMu.Lock()
	defer stubMu.Unlock()
	stubSrcs[name] = c
}

// memWarehouse is an in-memory warehouse.Warehouse double.
type memWarehouse struct {
	mu       sync.Mutex
	tables   map[string][]records.Record
	failNext bool
}

func newMemWarehouse() *memWarehouse {
	return &memWarehouse{tables: map[string][]records.Record{}}
}

func (m *memWarehouse) Replace(ctx context.Context, c schema.Contract, rows []records.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return 0, errkind.New(errkind.Write, "mem.replace", errors.New("disk full"))
	}
	m.tables[c.Table] = rows
	return int64(len(rows)), nil
}

func (m *memWarehouse) Select(ctx context.Context, table string) ([]records.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[table], nil
}

func (m *memWarehouse) Close() {}

var _ warehouse.Warehouse = (*memWarehouse)(nil)

func churnRows() []records.Record {
	return []records.Record{{
		"customerID":     "0001",
		"gender":         "F",
		"MonthlyCharges": "70.00",
		"TotalCharges":   "840.00",
		"Contract":       "month to month",
		"churn":          "Yes",
	}}
}

func stubPipeline(sources ...config.SourceSpec) config.Pipeline {
	return config.Pipeline{Job: "test", Sources: sources}
}

func TestRunMaterializesSource(t *testing.T) {
	setStub("good", stubConnector{rows: churnRows()})
	wh := newMemWarehouse()

	r := New(stubPipeline(config.SourceSpec{
		Name: "good", Kind: "stub", Target: schema.CustomerChurn.Table,
	}), config.Secrets{}, wh, nil)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)
	res := sum.Results[0]
	require.NoError(t, res.Err)
	require.False(t, res.Skipped)
	require.EqualValues(t, 1, res.Loaded)

	stored := wh.tables[schema.CustomerChurn.Table]
	require.Len(t, stored, 1)
	require.Equal(t, "0001", stored[0]["customer_id"], "rows must be normalized before loading")
	require.Equal(t, true, stored[0]["churn"])
}

func TestRunSkipsDisabledSource(t *testing.T) {
	off := false
	wh := newMemWarehouse()
	r := New(stubPipeline(config.SourceSpec{
		Name: "dark", Kind: "stub", Target: schema.CustomerReviews.Table, Enabled: &off,
	}), config.Secrets{}, wh, nil)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.True(t, sum.Results[0].Skipped)
	require.NoError(t, sum.Results[0].Err)
	require.Empty(t, wh.tables, "disabled source must not touch the warehouse")
}

func TestRunIsolatesFailures(t *testing.T) {
	setStub("broken", stubConnector{err: errkind.Newf(errkind.SourceUnavailable, "stub", "connection refused")})
	setStub("fine", stubConnector{rows: []records.Record{{"zip": "90003", "population": "100"}}})
	wh := newMemWarehouse()

	r := New(stubPipeline(
		config.SourceSpec{Name: "broken", Kind: "stub", Target: schema.CustomerChurn.Table},
		config.SourceSpec{Name: "fine", Kind: "stub", Target: schema.ZipPopulation.Table},
	), config.Secrets{}, wh, nil)

	sum, err := r.Run(context.Background())
	require.NoError(t, err, "stage failures must not abort the run")
	require.Len(t, sum.Failed(), 1)
	require.Equal(t, "broken", sum.Failed()[0].Source)
	require.Len(t, wh.tables[schema.ZipPopulation.Table], 1,
		"healthy source must still materialize")
}

func TestRunSchemaMismatchSurfaces(t *testing.T) {
	setStub("wrong-shape", stubConnector{rows: []records.Record{{"unrelated": "x"}}})
	wh := newMemWarehouse()

	r := New(stubPipeline(config.SourceSpec{
		Name: "wrong-shape", Kind: "stub", Target: schema.CustomerChurn.Table,
	}), config.Secrets{}, wh, nil)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	res := sum.Results[0]
	require.Error(t, res.Err)
	require.True(t, errkind.Is(res.Err, errkind.SchemaMismatch))
	require.Empty(t, wh.tables, "mismatched batch must not be loaded")
}

func TestRunWriteFailureReported(t *testing.T) {
	setStub("good", stubConnector{rows: churnRows()})
	wh := newMemWarehouse()
	wh.failNext = true

	r := New(stubPipeline(config.SourceSpec{
		Name: "good", Kind: "stub", Target: schema.CustomerChurn.Table,
	}), config.Secrets{}, wh, nil)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.True(t, errkind.Is(sum.Results[0].Err, errkind.Write))
}

func TestRunUnknownTarget(t *testing.T) {
	r := New(stubPipeline(config.SourceSpec{
		Name: "x", Kind: "stub", Target: "not_a_table",
	}), config.Secrets{}, newMemWarehouse(), nil)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Error(t, sum.Results[0].Err)
}
