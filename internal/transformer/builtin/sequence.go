package builtin

import (
	"fmt"
	"strings"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Sequence fills an ordinal column with a per-group counter when the source
// does not carry one. Child collections keyed by (parent, date, sequence)
// need it: without the ordinal, two same-day rows share a key and dedup
// would collapse them. Values already present are left alone, so a source
// that does export the column keeps its own numbering.
type Sequence struct {
	Keys  []string // columns identifying the group
	Field string   // ordinal column to assign within each group
}

func (s Sequence) Apply(in []records.Record) []records.Record {
	if s.Field == "" || len(s.Keys) == 0 {
		return in
	}
	next := map[string]int64{}
	for _, r := range in {
		key := s.groupOf(r)
		if v, ok := r[s.Field]; ok && v != nil && v != "" {
			// Source-numbered row; advance the counter past it so assigned
			// and carried ordinals cannot collide within one batch.
			if n, ok := v.(int64); ok && n >= next[key] {
				next[key] = n + 1
			}
			continue
		}
		r[s.Field] = next[key]
		next[key]++
	}
	return in
}

func (s Sequence) groupOf(r records.Record) string {
	var b strings.Builder
	for i, k := range s.Keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if v, ok := r[k]; ok && v != nil {
			if str, ok := v.(string); ok {
				b.WriteString(str)
			} else {
				b.WriteString(fmt.Sprint(v))
			}
		}
	}
	return b.String()
}
