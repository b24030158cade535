// Package transformer defines the row-transformation stage that sits
// between source extraction and warehouse loading.
package transformer

import "github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"

type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
