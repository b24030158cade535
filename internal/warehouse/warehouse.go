// Package warehouse contains the backend-agnostic materialization contract
// and the factory that opens a concrete backend by kind.
//
// A Warehouse materializes canonical tables with replace semantics: each
// load builds the table's new contents in a staging table and swaps it in
// atomically, so readers see either the previous complete table or the new
// one, never a partial load.
package warehouse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/config"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Warehouse is the storage-agnostic contract the pipeline and the analytics
// layer program against.
type Warehouse interface {
	// Replace atomically swaps the table described by the contract with the
	// given rows. On error the previously materialized table is untouched.
	Replace(ctx context.Context, contract schema.Contract, rows []records.Record) (int64, error)

	// Select returns every row of a materialized table keyed by canonical
	// column names.
	Select(ctx context.Context, table string) ([]records.Record, error)

	Close()
}

// Config carries everything a backend needs to open.
type Config struct {
	Kind       string
	Path       string // duckdb database file
	Host       string
	Port       int
	Database   string
	Schema     string // postgres schema, defaults to "public"
	Credential config.Credential
	BatchSize  int
}

// FromSpec flattens a pipeline's warehouse block plus its resolved
// credential into a backend Config.
func FromSpec(spec config.WarehouseSpec, secrets config.Secrets, batchSize int) (Config, error) {
	cfg := Config{Kind: spec.Kind, BatchSize: batchSize}
	switch spec.Kind {
	case "duckdb":
		cfg.Path = spec.DuckDB.Path
	case "postgres":
		cred, err := secrets.Resolve(spec.Postgres.CredentialsRef)
		if err != nil {
			return Config{}, err
		}
		cfg.Host = spec.Postgres.Host
		cfg.Port = spec.Postgres.Port
		cfg.Database = spec.Postgres.Database
		cfg.Schema = spec.Postgres.Schema
		cfg.Credential = cred
	}
	return cfg, nil
}

// Factory constructs a concrete backend from a Config.
type Factory func(ctx context.Context, cfg Config) (Warehouse, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a backend factory for the given kind.
// Called from backend packages' init functions.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens the backend registered under cfg.Kind.
func New(ctx context.Context, cfg Config) (Warehouse, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported warehouse.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
