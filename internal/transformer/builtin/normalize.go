// Package builtin contains the reusable transformers the ingestion
// pipeline composes per source.
package builtin

import (
	"strings"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Normalize trims surrounding whitespace from every string value and
// collapses non-breaking spaces that survive CSV exports.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				s = strings.ReplaceAll(s, " ", " ")
				r[k] = strings.TrimSpace(s)
			}
		}
	}
	return in
}
