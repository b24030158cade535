// Package connector defines the source connector abstraction: one interface
// over the heterogeneous inputs (delimited files, relational tables, document
// collections) that feed the warehouse. Concrete connectors live in
// subpackages and register themselves by kind, mirroring the warehouse
// backend factory.
package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/config"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Connector reads one external source and returns its rows plus a manifest.
// Extract is read-only: it must never mutate the source.
type Connector interface {
	Extract(ctx context.Context) ([]records.Record, Manifest, error)
}

// Config is the flat connection descriptor handed to connector factories.
// Only the fields relevant to a given kind are consulted. Credentials arrive
// already resolved from the environment; they never originate in config
// files.
type Config struct {
	Name string
	Kind string

	// file
	Path      string
	URL       string
	Format    string // "csv" (default) or "jsonl"
	Delimiter rune
	HasHeader bool
	HeaderMap map[string]string

	// relational / document
	Host       string
	Port       int
	Database   string
	Table      string // relational source table
	Collection string // document collection
	Credential config.Credential

	// Timeout bounds the whole extraction, connection included.
	Timeout time.Duration
}

// Factory constructs a Connector for a validated Config.
type Factory func(cfg Config) (Connector, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a connector factory for the given source
// kind. It is typically called from connector packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New constructs the connector selected by cfg.Kind.
func New(cfg Config) (Connector, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
	}
	return fn(cfg)
}

// ListKinds returns the registered source kinds, sorted.
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
