package connector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Manifest summarizes one extraction: what was read, how many rows, and a
// content digest. The digest is audit-only; two runs over an unchanged source
// produce the same digest, which makes idempotent reloads visible in logs.
type Manifest struct {
	Source   string   `json:"source"`
	RowCount int      `json:"row_count"`
	Columns  []string `json:"columns"`
	Digest   string   `json:"digest"`

	// Skipped counts malformed rows the parser soft-dropped before the rows
	// reached the connector, so corrupt-row loss stays auditable alongside
	// the normalizer's counters.
	Skipped int `json:"skipped,omitempty"`
}

// NewManifest builds a manifest for an extracted row set. When the connector
// cannot supply an authoritative column order (map-shaped sources), pass nil
// columns and the sorted union of row keys is used.
func NewManifest(source string, columns []string, rows []records.Record) Manifest {
	if columns == nil {
		columns = columnUnion(rows)
	}
	return Manifest{
		Source:   source,
		RowCount: len(rows),
		Columns:  columns,
		Digest:   digest(columns, rows),
	}
}

// columnUnion returns the sorted union of keys across all rows.
func columnUnion(rows []records.Record) []string {
	seen := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// digest hashes the column list and every row's values in column order.
// Values are stringified the same way regardless of source type so that the
// same logical content hashes identically across connectors.
func digest(columns []string, rows []records.Record) string {
	h := xxh3.New()
	for _, c := range columns {
		h.WriteString(c)
		h.WriteString("\x1f")
	}
	h.WriteString("\x1e")
	for _, r := range rows {
		for _, c := range columns {
			v, ok := r[c]
			switch {
			case !ok, v == nil:
				h.WriteString("\x00")
			default:
				h.WriteString(fmt.Sprint(v))
			}
			h.WriteString("\x1f")
		}
		h.WriteString("\x1e")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// trimLower is a small helper shared by connectors for case-insensitive
// option handling.
func trimLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
