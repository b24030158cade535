// Package pipeline orchestrates one ingestion run: every enabled source is
// extracted, normalized against its table contract, and materialized into
// the warehouse with replace semantics. Sources feed distinct tables, so
// they run concurrently; a failing source never blocks or corrupts the
// others, and a disabled source is a deliberate no-op stage.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/config"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/errkind"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/metrics"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/normalize"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"
)

// SourceResult summarizes the outcome of one source stage.
type SourceResult struct {
	Source    string
	Target    string
	Skipped   bool
	Extracted int
	Loaded    int64
	Report    normalize.Report
	Manifest  connector.Manifest
	Err       error
}

// Summary aggregates a whole run.
type Summary struct {
	Job      string
	Results  []SourceResult
	Duration time.Duration
}

// Failed returns the results that ended in an error.
func (s Summary) Failed() []SourceResult {
	var out []SourceResult
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Runner executes a pipeline against an opened warehouse.
type Runner struct {
	cfg     config.Pipeline
	secrets config.Secrets
	wh      warehouse.Warehouse
	log     *slog.Logger
}

func New(cfg config.Pipeline, secrets config.Secrets, wh warehouse.Warehouse, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, secrets: secrets, wh: wh, log: log}
}

// Run executes every source stage and returns the per-source outcomes.
// Stage errors are collected in the summary rather than aborting the run;
// the returned error is non-nil only when the run could not execute at
// all. Partial success is the normal failure mode: each table is either
// fully replaced or left at its previous contents.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	results := make([]SourceResult, len(r.cfg.Sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range r.cfg.Sources {
		g.Go(func() error {
			results[i] = r.runSource(gctx, src)
			// Stage errors are reported per source, not propagated, so one
			// bad source cannot cancel its siblings.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	sum := Summary{Job: r.cfg.Job, Results: results, Duration: time.Since(start)}
	for _, res := range sum.Results {
		switch {
		case res.Skipped:
			r.log.Info("source skipped", "source", res.Source, "target", res.Target)
		case res.Err != nil:
			kind, _ := errkind.KindOf(res.Err)
			r.log.Error("source failed",
				"source", res.Source,
				"target", res.Target,
				"kind", string(kind),
				"err", res.Err,
			)
		default:
			r.log.Info("source materialized",
				"source", res.Source,
				"target", res.Target,
				"extracted", res.Extracted,
				"skipped", res.Manifest.Skipped,
				"loaded", res.Loaded,
				"dropped", res.Report.Dropped,
				"digest", res.Manifest.Digest,
			)
		}
	}
	return sum, nil
}

func (r *Runner) runSource(ctx context.Context, src config.SourceSpec) SourceResult {
	res := SourceResult{Source: src.Name, Target: src.Target}
	if !src.IsEnabled() {
		res.Skipped = true
		return res
	}

	contract, ok := schema.ByTable(src.Target)
	if !ok {
		res.Err = fmt.Errorf("source %q: unknown target table %q", src.Name, src.Target)
		return res
	}

	ccfg, err := r.connectorConfig(src)
	if err != nil {
		res.Err = err
		return res
	}
	conn, err := connector.New(ccfg)
	if err != nil {
		res.Err = err
		return res
	}

	// extract
	t0 := time.Now()
	rows, manifest, err := conn.Extract(ctx)
	metrics.RecordStage(src.Name, "extract", err, time.Since(t0))
	if err != nil {
		res.Err = err
		return res
	}
	res.Extracted = len(rows)
	res.Manifest = manifest
	metrics.RecordRows(src.Name, "extracted", int64(len(rows)))
	metrics.RecordRows(src.Name, "skipped", int64(manifest.Skipped))

	// normalize
	t0 = time.Now()
	norm := normalize.New(contract)
	normalized, report, err := norm.Apply(rows, manifest)
	metrics.RecordStage(src.Name, "normalize", err, time.Since(t0))
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = report
	metrics.RecordRows(src.Name, "dropped", int64(report.Dropped))
	metrics.RecordRows(src.Name, "coerced", sumCounts(report.Coerced))
	metrics.RecordRows(src.Name, "defaulted", sumCounts(report.Defaulted))

	// load
	t0 = time.Now()
	loaded, err := r.wh.Replace(ctx, contract, normalized)
	metrics.RecordStage(src.Name, "load", err, time.Since(t0))
	if err != nil {
		res.Err = err
		return res
	}
	res.Loaded = loaded
	metrics.RecordRows(src.Name, "loaded", loaded)
	return res
}

// connectorConfig flattens a source spec plus its resolved credential into
// the descriptor the connector factory consumes.
func (r *Runner) connectorConfig(src config.SourceSpec) (connector.Config, error) {
	timeout := time.Duration(r.cfg.Runtime.SourceTimeoutSeconds) * time.Second
	cfg := connector.Config{
		Name:    src.Name,
		Kind:    src.Kind,
		Timeout: timeout,
	}
	switch src.Kind {
	case "file":
		cfg.Path = src.File.Path
		cfg.URL = src.File.URL
		cfg.Format = src.File.Format
		cfg.HeaderMap = src.File.HeaderMap
		cfg.HasHeader = src.File.HasHeader == nil || *src.File.HasHeader
		cfg.Delimiter = ','
		if src.File.Delimiter != "" {
			cfg.Delimiter = []rune(src.File.Delimiter)[0]
		}
	case "relational":
		cred, err := r.secrets.Resolve(src.Relational.CredentialsRef)
		if err != nil {
			return connector.Config{}, fmt.Errorf("source %q: %w", src.Name, err)
		}
		cfg.Host = src.Relational.Host
		cfg.Port = src.Relational.Port
		cfg.Database = src.Relational.Database
		cfg.Table = src.Relational.Table
		cfg.Credential = cred
	case "document":
		cred, err := r.secrets.Resolve(src.Document.CredentialsRef)
		if err != nil {
			return connector.Config{}, fmt.Errorf("source %q: %w", src.Name, err)
		}
		cfg.Host = src.Document.Host
		cfg.Port = src.Document.Port
		cfg.Database = src.Document.Database
		cfg.Collection = src.Document.Collection
		cfg.Credential = cred
	}
	return cfg, nil
}

func sumCounts(m map[string]int) int64 {
	var n int64
	for _, v := range m {
		n += int64(v)
	}
	return n
}
