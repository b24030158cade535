// Package config provides configuration models and helpers for ingestion
// pipelines.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users but
	// does not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "warehouse.kind",
// "sources[1].target"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue
	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf(format, a...)})
	}

	if strings.TrimSpace(p.Job) == "" {
		warnf("job", "job name is empty; logs and metrics will use a default")
	}
	if len(p.Sources) == 0 {
		errf("sources", "at least one source is required")
	}

	// Each warehouse table has single-writer discipline: two enabled sources
	// feeding the same target would race.
	targets := map[string]int{}

	for i, s := range p.Sources {
		path := fmt.Sprintf("sources[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			errf(path+".name", "source name is required")
		}
		if _, ok := schema.ByTable(s.Target); !ok {
			errf(path+".target", "unknown warehouse table %q (known: %s)",
				s.Target, strings.Join(schema.Tables(), ", "))
		}
		if s.IsEnabled() {
			targets[s.Target]++
		}

		switch s.Kind {
		case "file":
			if (s.File.Path == "") == (s.File.URL == "") {
				errf(path+".file", "exactly one of path or url is required")
			}
			if d := s.File.Delimiter; len([]rune(d)) > 1 {
				errf(path+".file.delimiter", "delimiter must be a single character, got %q", d)
			}
			switch s.File.Format {
			case "", "csv", "jsonl":
			default:
				errf(path+".file.format", "unsupported format %q (csv, jsonl)", s.File.Format)
			}
		case "relational":
			if s.Relational.Host == "" {
				errf(path+".relational.host", "host is required")
			}
			if s.Relational.Database == "" {
				errf(path+".relational.database", "database is required")
			}
			if s.Relational.Table == "" {
				errf(path+".relational.table", "table is required")
			}
		case "document":
			if s.Document.Database == "" {
				errf(path+".document.database", "database is required")
			}
			if s.Document.Collection == "" {
				errf(path+".document.collection", "collection is required")
			}
		default:
			errf(path+".kind", "unsupported source kind %q (file, relational, document)", s.Kind)
		}
	}

	for target, n := range targets {
		if n > 1 {
			errf("sources", "%d enabled sources feed table %q; each table has exactly one writer", n, target)
		}
	}

	switch p.Warehouse.Kind {
	case "duckdb":
		if p.Warehouse.DuckDB.Path == "" {
			errf("warehouse.duckdb.path", "path is required")
		}
	case "postgres":
		if p.Warehouse.Postgres.Host == "" {
			errf("warehouse.postgres.host", "host is required")
		}
		if p.Warehouse.Postgres.Database == "" {
			errf("warehouse.postgres.database", "database is required")
		}
	case "":
		errf("warehouse.kind", "warehouse kind is required")
	default:
		errf("warehouse.kind", "unsupported warehouse kind %q (duckdb, postgres)", p.Warehouse.Kind)
	}

	if p.Runtime.BatchSize < 0 {
		errf("runtime.batch_size", "batch_size must be >= 0")
	}

	return issues
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
