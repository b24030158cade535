// Command query reads the materialized warehouse and prints (or serves)
// filtered churn KPIs.
//
// Set-valued flags follow the filter's predicate semantics: leaving
// -contract off omits the predicate, passing -contract="" is an explicit
// empty set that matches nothing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/analytics"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/api"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/config"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"

	_ "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse/all"
)

func main() {
	var (
		cfgPath    string
		contracts  string
		churn      string
		monthlyMin string
		monthlyMax string
		serveAddr  string
	)
	flag.StringVar(&cfgPath, "config", "configs/pipelines/churn.json", "pipeline config JSON path (warehouse block)")
	flag.StringVar(&contracts, "contract", "", "comma-separated contract types to include")
	flag.StringVar(&churn, "churn", "", "comma-separated churn states to include (churned, active)")
	flag.StringVar(&monthlyMin, "monthly-min", "", "inclusive lower bound on monthly charges")
	flag.StringVar(&monthlyMax, "monthly-max", "", "inclusive upper bound on monthly charges")
	flag.StringVar(&serveAddr, "serve", "", "serve the HTTP API on this address instead of printing once")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level(*verbose)}))
	slog.SetDefault(log)

	p, err := config.LoadPipeline(cfgPath)
	if err != nil {
		fatal(log, "load pipeline", err)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		fatal(log, "load secrets", err)
	}

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

	svc := analytics.NewService(wh, log)

	if serveAddr != "" {
		srv := api.NewServer(api.Config{Addr: serveAddr}, svc, log)
		if err := srv.ListenAndServe(); err != nil {
			fatal(log, "serve", err)
		}
		return
	}

	spec, err := specFromFlags()
	if err != nil {
		fatal(log, "build filter", err)
	}
	snap, err := svc.GetFiltered(ctx, spec)
	if err != nil {
		fatal(log, "query", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		fatal(log, "encode", err)
	}
}

// specFromFlags translates the flag set into a FilterSpec, preserving the
// absent-vs-empty distinction via flag.Visit.
func specFromFlags() (analytics.FilterSpec, error) {
	var spec analytics.FilterSpec
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "contract":
			set := splitList(f.Value.String())
			spec.ContractTypes = &set
		case "churn":
			vals := splitList(f.Value.String())
			states := make([]analytics.ChurnState, 0, len(vals))
			for _, v := range vals {
				states = append(states, analytics.ChurnState(strings.ToLower(v)))
			}
			spec.ChurnStates = &states
		}
	})

	var rangeErr error
	setBound := func(raw string, dst **decimal.Decimal) {
		if raw == "" || rangeErr != nil {
			return
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			rangeErr = err
			return
		}
		*dst = &d
	}
	var rng analytics.Range
	setBound(flagValue("monthly-min"), &rng.Min)
	setBound(flagValue("monthly-max"), &rng.Max)
	if rangeErr != nil {
		return spec, rangeErr
	}
	if rng.Min != nil || rng.Max != nil {
		spec.MonthlyRange = &rng
	}
	return spec, nil
}

func flagValue(name string) string {
	if f := flag.Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
