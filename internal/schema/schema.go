// Package schema defines the canonical warehouse schema: one contract per
// warehouse table, plus the typed row structs used by the analytics layer.
//
// A Contract lists each canonical field together with the source column names
// it may arrive under and the coercion kind applied by the normalizer. The
// same contract also drives warehouse DDL, so every load path feeding a table
// agrees on its shape.
package schema

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field kinds understood by the normalizer and the warehouse DDL builders.
const (
	KindText    = "text"
	KindInt     = "int"
	KindFloat   = "float"
	KindDecimal = "decimal"
	KindBool    = "bool"
	KindEnum    = "enum"
)

// Canonical contract_type values.
const (
	ContractMonthToMonth = "month-to-month"
	ContractOneYear      = "one-year"
	ContractTwoYear      = "two-year"
)

// ContractTypes lists the canonical contract_type enum in display order.
var ContractTypes = []string{ContractMonthToMonth, ContractOneYear, ContractTwoYear}

// Field describes one canonical column.
type Field struct {
	// Name is the canonical column name in the warehouse.
	Name string

	// Aliases are source column names this field may arrive under, matched
	// case-insensitively and ignoring underscores. The canonical name always
	// matches implicitly.
	Aliases []string

	// Kind selects the coercion applied by the normalizer.
	Kind string

	// Required marks columns that must be present in the source input.
	// A required column missing entirely is a schema mismatch; blank values
	// in individual rows are coerced, never dropped.
	Required bool

	// EnumMap maps lowercased source values onto canonical enum values.
	// Only consulted when Kind == KindEnum.
	EnumMap map[string]string

	// Default is substituted when the source value is absent or blank and
	// the field is not required. A nil Default leaves the value NULL.
	Default any

	// Nullable marks columns stored as NULLable in the warehouse.
	Nullable bool
}

// Contract is the canonical shape of one warehouse table.
type Contract struct {
	Table  string
	Fields []Field
	Key    []string // logical key columns; informational, not enforced on load

	// Sequence names a key column the normalizer assigns per group of the
	// remaining key columns when the source does not carry it. Child
	// collections use it so rows sharing the other key columns stay
	// distinct through key dedup.
	Sequence string
}

// Columns returns the canonical column names in declaration order.
func (c Contract) Columns() []string {
	cols := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Field returns the field with the given canonical name.
func (c Contract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// foldAccents decomposes, strips nonspacing marks, and recomposes, so
// accented column names from exported spreadsheets match their ASCII aliases.
var foldAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// MatchKey folds a column name for alias matching: accents stripped,
// lowercase, underscores removed. "customerID", "customer_id" and
// "customerid" all collide, which is exactly what heterogeneous sources need.
func MatchKey(col string) string {
	if folded, _, err := transform.String(foldAccents, col); err == nil {
		col = folded
	}
	s := strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(s, "_", "")
}

var contractTypeMap = map[string]string{
	"month-to-month": ContractMonthToMonth,
	"month to month": ContractMonthToMonth,
	"one year":       ContractOneYear,
	"one-year":       ContractOneYear,
	"two year":       ContractTwoYear,
	"two-year":       ContractTwoYear,
}

// CustomerChurn is the primary fact table.
var CustomerChurn = Contract{
	Table: "customer_churn_data",
	Key:   []string{"customer_id"},
	Fields: []Field{
		{Name: "customer_id", Aliases: []string{"customerID"}, Kind: KindText, Required: true},
		{Name: "gender", Kind: KindText, Required: true},
		{Name: "monthly_charges", Aliases: []string{"MonthlyCharges"}, Kind: KindDecimal, Required: true, Default: decimal.Zero},
		{Name: "total_charges", Aliases: []string{"TotalCharges"}, Kind: KindDecimal, Required: true, Default: decimal.Zero},
		{Name: "contract_type", Aliases: []string{"Contract"}, Kind: KindEnum, Required: true, EnumMap: contractTypeMap},
		{Name: "churn", Kind: KindBool, Required: true},
	},
}

// CustomerLocation is the per-customer geography dimension. Latitude and
// longitude default to 0.0 when the source does not carry them.
var CustomerLocation = Contract{
	Table: "customer_location",
	Key:   []string{"customer_id"},
	Fields: []Field{
		{Name: "customer_id", Aliases: []string{"customerID"}, Kind: KindText, Required: true},
		{Name: "zip_code", Aliases: []string{"zip", "Zip_Code"}, Kind: KindText, Required: true},
		{Name: "latitude", Kind: KindFloat, Default: 0.0},
		{Name: "longitude", Kind: KindFloat, Default: 0.0},
	},
}

// ZipPopulation is the zip-code reference dimension.
var ZipPopulation = Contract{
	Table: "zip_population",
	Key:   []string{"zip_code"},
	Fields: []Field{
		{Name: "zip_code", Aliases: []string{"zip", "Zip_Code"}, Kind: KindText, Required: true},
		{Name: "population", Kind: KindInt, Required: true, Default: int64(0)},
	},
}

// CustomerReviews is the optional child collection; zero reviews per customer
// is valid, and so are several reviews on the same day. Sources carry no
// sequence column, so it is assigned during normalization. Rating may be
// absent and stays NULL.
var CustomerReviews = Contract{
	Table:    "customer_reviews",
	Key:      []string{"customer_id", "review_date", "sequence"},
	Sequence: "sequence",
	Fields: []Field{
		{Name: "customer_id", Aliases: []string{"customerID"}, Kind: KindText, Required: true},
		{Name: "review_date", Aliases: []string{"date"}, Kind: KindText, Required: true},
		{Name: "sequence", Kind: KindInt, Default: int64(0)},
		{Name: "rating", Kind: KindInt, Nullable: true},
		{Name: "comment", Aliases: []string{"review", "text"}, Kind: KindText, Nullable: true},
		{Name: "tags", Kind: KindText, Nullable: true},
	},
}

var contracts = map[string]Contract{
	CustomerChurn.Table:    CustomerChurn,
	CustomerLocation.Table: CustomerLocation,
	ZipPopulation.Table:    ZipPopulation,
	CustomerReviews.Table:  CustomerReviews,
}

// ByTable returns the contract for a warehouse table name.
func ByTable(table string) (Contract, bool) {
	c, ok := contracts[table]
	return c, ok
}

// Tables lists the canonical warehouse table names.
func Tables() []string {
	return []string{
		CustomerChurn.Table,
		CustomerLocation.Table,
		ZipPopulation.Table,
		CustomerReviews.Table,
	}
}
