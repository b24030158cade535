package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Stats counts the value-level adjustments Coerce made, keyed by canonical
// column name. The pipeline logs these per source so silent data repair
// stays visible.
type Stats struct {
	Coerced   map[string]int
	Defaulted map[string]int
}

func NewStats() *Stats {
	return &Stats{
		Coerced:   map[string]int{},
		Defaulted: map[string]int{},
	}
}

func (s *Stats) coerced(field string) {
	if s != nil {
		s.Coerced[field]++
	}
}

func (s *Stats) defaulted(field string) {
	if s != nil {
		s.Defaulted[field]++
	}
}

var truthy = map[string]bool{"yes": true, "y": true, "true": true, "t": true, "1": true}
var falsy = map[string]bool{"no": true, "n": true, "false": true, "f": true, "0": true}

// Coerce converts each record's values to the canonical kind declared by its
// field. Values already carrying the target type pass through unchanged, so
// relational sources that deliver typed columns are not re-parsed. Blank or
// absent values take the field default; a blank value with no default and a
// nullable field becomes nil.
type Coerce struct {
	Fields []schema.Field
	Stats  *Stats
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, f := range c.Fields {
			v, ok := r[f.Name]
			if !ok || v == nil || v == "" {
				if f.Default != nil {
					r[f.Name] = f.Default
					c.Stats.defaulted(f.Name)
				} else if f.Nullable {
					r[f.Name] = nil
				}
				continue
			}
			out, changed := coerceValue(v, f)
			if changed {
				c.Stats.coerced(f.Name)
			}
			r[f.Name] = out
		}
	}
	return in
}

func coerceValue(v any, f schema.Field) (any, bool) {
	switch f.Kind {
	case schema.KindInt:
		return toInt64(v, f)
	case schema.KindFloat:
		return toFloat64(v, f)
	case schema.KindDecimal:
		return toDecimal(v, f)
	case schema.KindBool:
		return toBool(v, f)
	case schema.KindEnum:
		return toEnum(v, f)
	default:
		if s, ok := v.(string); ok {
			return s, false
		}
		return stringify(v), true
	}
}

func toInt64(v any, f schema.Field) (any, bool) {
	switch t := v.(type) {
	case int64:
		return t, false
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i, true
		}
		// "36820.0"-style exports parse as float first.
		if fl, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int64(fl), true
		}
	}
	return fallback(v, f)
}

func toFloat64(v any, f schema.Field) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, false
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		if fl, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return fl, true
		}
	}
	return fallback(v, f)
}

func toDecimal(v any, f schema.Field) (any, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, false
	case float64:
		return decimal.NewFromFloat(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d, true
		}
	}
	return fallback(v, f)
}

func toBool(v any, f schema.Field) (any, bool) {
	switch t := v.(type) {
	case bool:
		return t, false
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if truthy[s] {
			return true, true
		}
		if falsy[s] {
			return false, true
		}
	case int64:
		return t != 0, true
	case float64:
		return t != 0, true
	}
	return fallback(v, f)
}

func toEnum(v any, f schema.Field) (any, bool) {
	s, ok := v.(string)
	if !ok {
		s = stringify(v)
	}
	key := strings.ToLower(strings.TrimSpace(s))
	if canon, ok := f.EnumMap[key]; ok {
		return canon, canon != s
	}
	return s, false
}

// fallback handles unparseable values: take the default when one exists,
// otherwise leave the value alone for the load stage to reject.
func fallback(v any, f schema.Field) (any, bool) {
	if f.Default != nil {
		return f.Default, true
	}
	if f.Nullable {
		return nil, true
	}
	return v, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}
