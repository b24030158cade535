package builtin

import "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"

// Require drops any record missing a value for one of the listed fields.
// It guards the logical key columns; value-level blanks elsewhere are the
// coercer's job, not a reason to lose a row.
type Require struct {
	Fields []string

	// Dropped, when non-nil, receives the count of removed records.
	Dropped *int
}

func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil || v == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		} else if r.Dropped != nil {
			*r.Dropped++
		}
	}
	return out
}
