// Package jsonl implements a newline-delimited JSON parser that turns JSON
// objects into records. It matches the export shape of the review collection
// (one document per line) and is deliberately conservative:
//
//   - Each top-level value must be a JSON object.
//   - Numbers are decoded with json.Number so the normalizer decides how to
//     map numeric values.
package jsonl

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Options configures the JSONL parser.
type Options struct {
	// StripFields lists top-level keys removed from every record before it
	// leaves the parser, e.g. store-internal identifiers like "_id".
	StripFields []string
}

// Parser parses a stream of newline-delimited JSON objects.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse decodes every object in the stream. A top-level value that is not an
// object fails the whole parse; this is a format error, not a skippable row.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var out []records.Record
	for {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("jsonl: decode: %w", err)
		}

		m, ok := raw.(map[string]any)
		if !ok {
			return nil, 0, fmt.Errorf("jsonl: expected object, got %T", raw)
		}
		rec := records.Record(m)
		for _, f := range p.opt.StripFields {
			delete(rec, f)
		}
		out = append(out, flatten(rec))
	}
	return out, 0, nil
}

// flatten converts json.Number values to plain strings so downstream coercion
// treats file and document sources identically.
func flatten(rec records.Record) records.Record {
	for k, v := range rec {
		if n, ok := v.(json.Number); ok {
			rec[k] = n.String()
		}
	}
	return rec
}
