// Package records defines the dynamic record shape passed between pipeline
// stages. Connectors produce Records, the normalizer rewrites them onto the
// canonical warehouse schema, and the materializer flattens them into ordered
// column values.
package records

// Record is a single logical row keyed by column name. Values are the loose
// types produced by parsers and drivers (string, numeric, bool, nil). A nil
// value means the source field was empty or absent.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value for key when it is a non-empty string.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
