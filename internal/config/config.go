// Package config defines the canonical, JSON-serializable configuration model
// for the ingestion pipeline. Pipelines are loaded from disk (e.g.
// configs/pipelines/*.json) and passed through the program without additional
// glue code.
//
// Connection credentials never appear in pipeline files. Source and warehouse
// descriptors carry only location fields (host, port, database, path) plus a
// credentials_ref that is resolved against the environment at startup; see
// env.go.
//
// Example (trimmed):
//
//	{
//	  "job": "churn_warehouse",
//	  "sources": [
//	    {
//	      "name": "telco_churn_csv",
//	      "kind": "file",
//	      "target": "customer_churn_data",
//	      "file": { "path": "data/Telco-Customer-Churn.csv", "delimiter": ";" }
//	    },
//	    {
//	      "name": "customer_reviews",
//	      "kind": "document",
//	      "target": "customer_reviews",
//	      "enabled": false,
//	      "document": { "database": "telecom_data", "collection": "customer_reviews",
//	                    "credentials_ref": "document" }
//	    }
//	  ],
//	  "warehouse": { "kind": "duckdb", "duckdb": { "path": "churn_warehouse.duckdb" } }
//	}
package config

import "encoding/json"

// Pipeline describes one full ingestion run: the set of sources to extract
// and the warehouse they materialize into.
type Pipeline struct {
	// Job names the pipeline for logs and metrics grouping.
	Job string `json:"job"`

	// Sources lists the independent source-to-table loads. Each source feeds
	// exactly one warehouse table; sources with distinct targets are safe to
	// run in parallel.
	Sources []SourceSpec `json:"sources"`

	// Warehouse selects and configures the analytical store.
	Warehouse WarehouseSpec `json:"warehouse"`

	// Runtime controls batching and source I/O deadlines.
	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls batching and per-source timeouts.
type RuntimeConfig struct {
	// BatchSize is the number of rows per staging write. Defaults to 500.
	BatchSize int `json:"batch_size"`

	// SourceTimeoutSeconds bounds a single source extraction, connection
	// included. Defaults to 60.
	SourceTimeoutSeconds int `json:"source_timeout_seconds"`
}

// BatchSizeOrDefault returns BatchSize with the default applied.
func (r RuntimeConfig) BatchSizeOrDefault() int {
	if r.BatchSize > 0 {
		return r.BatchSize
	}
	return 500
}

// SourceSpec identifies one external source and its warehouse target.
type SourceSpec struct {
	// Name identifies the source in logs, metrics, and stage names.
	Name string `json:"name"`

	// Kind selects the connector implementation: "file", "relational",
	// or "document".
	Kind string `json:"kind"`

	// Target is the canonical warehouse table this source feeds. It must name
	// one of the schema contracts.
	Target string `json:"target"`

	// Enabled defaults to true. A disabled source is a deliberate no-op
	// stage, distinct from a failed one.
	Enabled *bool `json:"enabled,omitempty"`

	// Exactly one of the following blocks is consulted, per Kind.
	File       FileSpec       `json:"file,omitempty"`
	Relational RelationalSpec `json:"relational,omitempty"`
	Document   DocumentSpec   `json:"document,omitempty"`

	// Options is a free-form bag interpreted by the connector (e.g. parser
	// knobs that vary per source).
	Options Options `json:"options,omitempty"`
}

// IsEnabled applies the default for the Enabled tri-state.
func (s SourceSpec) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// FileSpec configures the "file" source kind. Exactly one of Path or URL must
// be set.
type FileSpec struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`

	// Format is "csv" (default) or "jsonl".
	Format string `json:"format,omitempty"`

	// Delimiter is the single-character field separator for csv. Defaults
	// to ",". The Telco export uses ";".
	Delimiter string `json:"delimiter,omitempty"`

	// HasHeader defaults to true for csv.
	HasHeader *bool `json:"has_header,omitempty"`

	// HeaderMap optionally maps raw source headers to canonical names before
	// normalization.
	HeaderMap map[string]string `json:"header_map,omitempty"`
}

// RelationalSpec configures the "relational" source kind. The DSN is composed
// from these fields plus the credential resolved via CredentialsRef.
type RelationalSpec struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`

	// Table is the source table read with a parametrized SELECT. It must be
	// a bare or schema-qualified identifier; it is always quoted, never
	// interpolated with untrusted input.
	Table string `json:"table"`

	// CredentialsRef names the environment credential used to authenticate;
	// see config.Secrets.
	CredentialsRef string `json:"credentials_ref"`
}

// DocumentSpec configures the "document" source kind.
type DocumentSpec struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Database   string `json:"database"`
	Collection string `json:"collection"`

	// CredentialsRef names the environment credential; when that credential
	// carries a full URI, host/port are ignored.
	CredentialsRef string `json:"credentials_ref"`
}

// WarehouseSpec selects the warehouse backend.
type WarehouseSpec struct {
	// Kind is "duckdb" or "postgres".
	Kind string `json:"kind"`

	DuckDB   DuckDBSpec   `json:"duckdb,omitempty"`
	Postgres PostgresSpec `json:"postgres,omitempty"`
}

// DuckDBSpec configures the embedded DuckDB warehouse file.
type DuckDBSpec struct {
	Path string `json:"path"`
}

// PostgresSpec configures a Postgres-backed warehouse.
type PostgresSpec struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Database       string `json:"database"`
	Schema         string `json:"schema,omitempty"` // defaults to "public"
	CredentialsRef string `json:"credentials_ref"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def. Useful for
// single-character settings such as a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON makes a missing or null "options" object decode to a non-nil,
// empty Options map so call sites need no nil checks.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
