// Command ingest runs one ingestion pass: it loads the pipeline config,
// extracts every enabled source, and materializes the warehouse tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/config"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/metrics"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/metrics/prompush"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/pipeline"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"

	// register all connectors and warehouse backends with their factories.
	// config selects which to use but every kind must be compiled in.
	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector/all"
	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse/all"
)

func main() {
	var (
		cfgPath        string
		metricsBackend string
		pushgatewayURL string
		validate       bool
	)
	flag.StringVar(&cfgPath, "config", "configs/pipelines/churn.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackend, "metrics-backend", "none", "metrics backend (pushgateway, none)")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides CHURN_PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	log := newLogger(*verbose)
	slog.SetDefault(log)

	p, err := config.LoadPipeline(cfgPath)
	if err != nil {
		fatal(log, "load pipeline", err)
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatal(log, "invalid configuration", fmt.Errorf("%s", cfgPath))
	}
	if validate {
		log.Info("configuration is valid", "path", cfgPath)
		return
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		fatal(log, "load secrets", err)
	}

	setupMetrics(log, metricsBackend, pushgatewayURL, secrets, p.Job)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "err", err)
		}
	}()

	ctx := context.Background()

	whCfg, err := warehouse.FromSpec(p.Warehouse, secrets, p.Runtime.BatchSizeOrDefault())
	if err != nil {
		fatal(log, "warehouse config", err)
	}
	wh, err := warehouse.New(ctx, whCfg)
	if err != nil {
		fatal(log, "open warehouse", err)
	}
	defer wh.Close()

	summary, err := pipeline.New(p, secrets, wh, log).Run(ctx)
	if err != nil {
		fatal(log, "run pipeline", err)
	}

	if failed := summary.Failed(); len(failed) > 0 {
		log.Error("run finished with failures",
			"job", summary.Job,
			"failed", len(failed),
			"sources", len(summary.Results),
			"duration", summary.Duration.String(),
		)
		os.Exit(1)
	}
	log.Info("run finished",
		"job", summary.Job,
		"sources", len(summary.Results),
		"duration", summary.Duration.String(),
	)
}

func setupMetrics(log *slog.Logger, backend, gwURL string, secrets config.Secrets, job string) {
	switch backend {
	case "pushgateway":
		if gwURL == "" {
			gwURL = secrets.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		if job == "" {
			job = "churn_ingest"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Warn("metrics backend init failed, using nop", "err", err)
			return
		}
		log.Info("metrics enabled", "backend", backend, "url", gwURL, "job", job)
		metrics.SetBackend(b)
	case "", "none":
		// nop backend remains
	default:
		log.Warn("unknown metrics backend, metrics disabled", "backend", backend)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
