// Package normalize maps heterogeneous source rows onto a canonical table
// contract: source columns are resolved to canonical names by alias, values
// are coerced to the contract's kinds, and blanks take the contract's
// defaults. The output of Apply is warehouse-shaped regardless of whether
// the rows came from a CSV export, a relational table, or a document
// collection.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/errkind"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/transformer"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/transformer/builtin"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Report summarizes what one Apply call did to a batch. The pipeline logs
// it per source so value repairs stay auditable.
type Report struct {
	Input     int
	Output    int
	Dropped   int            // rows removed for missing key columns
	Coerced   map[string]int // canonical column -> values converted from source form
	Defaulted map[string]int // canonical column -> blanks replaced by the contract default
	Columns   map[string]string
}

// Normalizer applies one table contract.
type Normalizer struct {
	Contract schema.Contract
}

func New(contract schema.Contract) Normalizer {
	return Normalizer{Contract: contract}
}

// Apply normalizes rows extracted under the given manifest. A required
// contract column with no resolvable source column is a schema mismatch:
// the whole batch is rejected so a renamed upstream header cannot silently
// produce an empty or half-typed table.
func (n Normalizer) Apply(rows []records.Record, m connector.Manifest) ([]records.Record, Report, error) {
	rep := Report{
		Input:     len(rows),
		Coerced:   map[string]int{},
		Defaulted: map[string]int{},
	}

	mapping, missing := n.resolveColumns(m.Columns)
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, rep, errkind.Newf(errkind.SchemaMismatch, "normalize",
			"source %q lacks required columns for table %s: %s",
			m.Source, n.Contract.Table, strings.Join(missing, ", "))
	}
	rep.Columns = mapping

	out := make([]records.Record, len(rows))
	for i, r := range rows {
		out[i] = n.rename(r, mapping)
	}

	stats := builtin.NewStats()
	chain := transformer.Chain{builtin.Normalize{}}
	if n.Contract.Sequence != "" {
		// Assign the ordinal before dedup so same-group rows keep distinct
		// keys; sources never carry it for child collections.
		chain = append(chain, builtin.Sequence{
			Keys:  n.sequenceGroup(),
			Field: n.Contract.Sequence,
		})
	}
	chain = append(chain,
		builtin.Coerce{Fields: n.Contract.Fields, Stats: stats},
		builtin.Require{Fields: n.Contract.Key, Dropped: &rep.Dropped},
		builtin.DeDup{Keys: n.Contract.Key},
	)
	out = chain.Apply(out)

	rep.Coerced = stats.Coerced
	rep.Defaulted = stats.Defaulted
	rep.Output = len(out)
	return out, rep, nil
}

// sequenceGroup returns the key columns the assigned ordinal groups by:
// every key column except the ordinal itself.
func (n Normalizer) sequenceGroup() []string {
	keys := make([]string, 0, len(n.Contract.Key))
	for _, k := range n.Contract.Key {
		if k != n.Contract.Sequence {
			keys = append(keys, k)
		}
	}
	return keys
}

// resolveColumns maps each source column onto its canonical field, and
// reports required canonical columns with no source counterpart. Unmapped
// source columns are simply ignored; extra columns are not an error.
func (n Normalizer) resolveColumns(sourceCols []string) (map[string]string, []string) {
	byKey := map[string]string{}
	for _, f := range n.Contract.Fields {
		byKey[schema.MatchKey(f.Name)] = f.Name
		for _, a := range f.Aliases {
			byKey[schema.MatchKey(a)] = f.Name
		}
	}

	mapping := map[string]string{}
	seen := map[string]bool{}
	for _, col := range sourceCols {
		if canon, ok := byKey[schema.MatchKey(col)]; ok && !seen[canon] {
			mapping[col] = canon
			seen[canon] = true
		}
	}

	var missing []string
	for _, f := range n.Contract.Fields {
		if f.Required && !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	return mapping, missing
}

// rename produces a fresh record keyed by canonical names. Every contract
// column is present afterwards, unresolved optional columns as nil, so the
// coercer can apply defaults uniformly.
func (n Normalizer) rename(r records.Record, mapping map[string]string) records.Record {
	out := make(records.Record, len(n.Contract.Fields))
	for _, f := range n.Contract.Fields {
		out[f.Name] = nil
	}
	for src, canon := range mapping {
		if v, ok := r[src]; ok {
			out[canon] = v
		} else {
			// Manifests built from union-of-keys may list columns absent
			// from individual documents.
			for k, v := range r {
				if schema.MatchKey(k) == schema.MatchKey(src) {
					out[canon] = v
					break
				}
			}
		}
	}
	return out
}

// ForTable looks up the contract for a warehouse table and returns a
// normalizer bound to it.
func ForTable(table string) (Normalizer, error) {
	c, ok := schema.ByTable(table)
	if !ok {
		return Normalizer{}, fmt.Errorf("no table contract for %q", table)
	}
	return New(c), nil
}
