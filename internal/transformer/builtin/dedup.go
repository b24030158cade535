package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// DeDup collapses records sharing the same logical key before they reach
// the warehouse, so a re-exported source file with repeated customer rows
// does not double-count in the aggregates. The last occurrence wins, which
// matches "latest export line is freshest"; set KeepFirst for sources where
// the first line is authoritative.
//
// Records missing a key field are passed through untouched.
type DeDup struct {
	Keys      []string
	KeepFirst bool
}

func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	type slot struct {
		rec   records.Record
		index int
	}
	winners := make(map[string]slot, len(in))

	for i, r := range in {
		key, ok := d.keyOf(r)
		if !ok {
			continue
		}
		if _, exists := winners[key]; exists && d.KeepFirst {
			continue
		}
		winners[key] = slot{rec: r, index: i}
	}

	indexes := make([]int, 0, len(winners))
	byIndex := make(map[int]records.Record, len(winners))
	for _, s := range winners {
		indexes = append(indexes, s.index)
		byIndex[s.index] = s.rec
	}
	sort.Ints(indexes)

	out := make([]records.Record, 0, len(in))
	for _, idx := range indexes {
		out = append(out, byIndex[idx])
	}
	for _, r := range in {
		if _, ok := d.keyOf(r); !ok {
			out = append(out, r)
		}
	}
	return out
}

func (d DeDup) keyOf(r records.Record) (string, bool) {
	var b strings.Builder
	for i, k := range d.Keys {
		v, ok := r[k]
		if !ok || v == nil {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if s, ok := v.(string); ok {
			b.WriteString(s)
		} else {
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String(), true
}
