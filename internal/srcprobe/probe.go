// Package srcprobe samples a delimited file (local or HTTP) and drafts a
// source descriptor for it: the sniffed delimiter, the header row, and the
// best-matching warehouse table judged by how many canonical columns the
// header resolves against each contract.
package srcprobe

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/config"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/datasource"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/datasource/file"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/datasource/httpds"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
)

// Options controls one probe.
type Options struct {
	Path     string // local file; mutually exclusive with URL
	URL      string
	Name     string // connector name for the drafted descriptor
	MaxBytes int    // sample size; defaults to 64 KiB
}

// Result is the probe outcome.
type Result struct {
	// Spec is the drafted source descriptor, ready to paste into a
	// pipeline file.
	Spec config.SourceSpec `json:"spec"`

	// Headers is the raw header row as sampled.
	Headers []string `json:"headers"`

	// Matched maps each candidate table to the number of required columns
	// its contract resolved from the header.
	Matched map[string]int `json:"matched"`
}

var candidateDelims = []rune{',', ';', '\t', '|'}

// Probe samples the source and drafts a descriptor. The target table is a
// guess: the contract whose required columns the header covers best. Ties
// and zero-coverage both leave Target empty for the operator to fill in.
func Probe(ctx context.Context, opt Options) (Result, error) {
	if (opt.Path == "") == (opt.URL == "") {
		return Result{}, fmt.Errorf("exactly one of Path or URL must be set")
	}
	maxBytes := opt.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 64 * 1024
	}

	var src datasource.Source
	if opt.Path != "" {
		src = file.NewLocal(opt.Path)
	} else {
		src = httpds.NewRemote(httpds.Config{URL: opt.URL, Timeout: 30 * time.Second})
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	sample, err := io.ReadAll(io.LimitReader(rc, int64(maxBytes)))
	if err != nil {
		return Result{}, fmt.Errorf("read sample: %w", err)
	}
	sample = bytes.TrimPrefix(sample, []byte{0xEF, 0xBB, 0xBF})
	if len(sample) == 0 {
		return Result{}, fmt.Errorf("source is empty")
	}

	delim := sniffDelimiter(sample)
	headers, err := headerRow(sample, delim)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Headers: headers,
		Matched: map[string]int{},
	}
	target, best := "", 0
	tied := false
	for _, table := range schema.Tables() {
		contract, _ := schema.ByTable(table)
		n := coverage(contract, headers)
		res.Matched[table] = n
		switch {
		case n > best:
			target, best, tied = table, n, false
		case n == best && n > 0:
			tied = true
		}
	}
	if tied {
		target = ""
	}

	res.Spec = config.SourceSpec{
		Name:   opt.Name,
		Kind:   "file",
		Target: target,
		File: config.FileSpec{
			Path:      opt.Path,
			URL:       opt.URL,
			Format:    "csv",
			Delimiter: string(delim),
		},
	}
	return res, nil
}

// sniffDelimiter picks the candidate that splits the first line into the
// most fields. Comma wins ties by candidate order.
func sniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestCount := ',', 0
	for _, d := range candidateDelims {
		n := strings.Count(string(line), string(d))
		if n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func headerRow(sample []byte, delim rune) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(sample))
	r.Comma = delim
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	return headers, nil
}

// coverage counts the contract's required columns that the header resolves
// by canonical name or alias.
func coverage(contract schema.Contract, headers []string) int {
	have := map[string]bool{}
	for _, h := range headers {
		have[schema.MatchKey(h)] = true
	}
	n := 0
	for _, f := range contract.Fields {
		if !f.Required {
			continue
		}
		keys := append([]string{f.Name}, f.Aliases...)
		for _, k := range keys {
			if have[schema.MatchKey(k)] {
				n++
				break
			}
		}
	}
	return n
}
