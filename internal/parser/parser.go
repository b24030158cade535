package parser

import (
	"io"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// Parser turns raw source bytes into records. The second return value counts
// rows that were soft-skipped (malformed lines); a non-nil error means the
// payload as a whole could not be parsed.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
