package warehouse

import (
	"fmt"
	"strings"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
)

// TypeMapper maps a canonical field to a backend-specific SQL column type.
type TypeMapper func(f schema.Field) string

// BuildCreateTable renders a CREATE TABLE statement for the contract with
// the given table name (the caller chooses target vs staging name). quote
// must quote one identifier segment; typeFor supplies the column types.
// Columns declared non-nullable in the contract get NOT NULL; the logical
// key is not enforced as a constraint because replace loads de-duplicate
// before writing.
func BuildCreateTable(name string, contract schema.Contract, quote func(string) string, typeFor TypeMapper) string {
	cols := make([]string, 0, len(contract.Fields))
	for _, f := range contract.Fields {
		col := fmt.Sprintf("%s %s", quote(f.Name), typeFor(f))
		if !f.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", name, strings.Join(cols, ",\n  "))
}

// StagingName returns the staging table name used during a replace load.
func StagingName(table string) string {
	return table + "__staging"
}
