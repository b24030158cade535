package builtin

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

func TestCoerceKinds(t *testing.T) {
	fields := []schema.Field{
		{Name: "population", Kind: schema.KindInt},
		{Name: "latitude", Kind: schema.KindFloat},
		{Name: "monthly_charges", Kind: schema.KindDecimal},
		{Name: "churn", Kind: schema.KindBool},
		{Name: "contract_type", Kind: schema.KindEnum, EnumMap: map[string]string{
			"month to month": schema.ContractMonthToMonth,
		}},
	}
	in := []records.Record{{
		"population":      "36820",
		"latitude":        "33.96",
		"monthly_charges": "29.85",
		"churn":           "Yes",
		"contract_type":   "Month to month",
	}}

	stats := NewStats()
	out := Coerce{Fields: fields, Stats: stats}.Apply(in)
	r := out[0]

	if got, want := r["population"], int64(36820); got != want {
		t.Errorf("population = %#v, want %#v", got, want)
	}
	if got, want := r["latitude"], 33.96; got != want {
		t.Errorf("latitude = %#v, want %#v", got, want)
	}
	d, ok := r["monthly_charges"].(decimal.Decimal)
	if !ok || !d.Equal(decimal.RequireFromString("29.85")) {
		t.Errorf("monthly_charges = %#v, want decimal 29.85", r["monthly_charges"])
	}
	if got, want := r["churn"], true; got != want {
		t.Errorf("churn = %#v, want %#v", got, want)
	}
	if got, want := r["contract_type"], schema.ContractMonthToMonth; got != want {
		t.Errorf("contract_type = %#v, want %#v", got, want)
	}
	if stats.Coerced["population"] != 1 {
		t.Errorf("Coerced[population] = %d, want 1", stats.Coerced["population"])
	}
}

func TestCoerceBoolVariants(t *testing.T) {
	fields := []schema.Field{{Name: "churn", Kind: schema.KindBool}}
	tests := []struct {
		in   any
		want bool
	}{
		{"Yes", true}, {"no", false}, {"TRUE", true}, {"0", false},
		{true, true}, {int64(1), true},
	}
	for _, tt := range tests {
		out := Coerce{Fields: fields}.Apply([]records.Record{{"churn": tt.in}})
		if got := out[0]["churn"]; got != tt.want {
			t.Errorf("churn %#v -> %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestCoerceBlankTakesDefault(t *testing.T) {
	fields := []schema.Field{
		{Name: "total_charges", Kind: schema.KindDecimal, Default: decimal.Zero},
		{Name: "rating", Kind: schema.KindInt, Nullable: true},
	}
	stats := NewStats()
	out := Coerce{Fields: fields, Stats: stats}.Apply([]records.Record{
		{"total_charges": "", "rating": nil},
		{"total_charges": nil, "rating": ""},
	})
	for i, r := range out {
		d, ok := r["total_charges"].(decimal.Decimal)
		if !ok || !d.IsZero() {
			t.Errorf("row %d total_charges = %#v, want decimal zero", i, r["total_charges"])
		}
		if r["rating"] != nil {
			t.Errorf("row %d rating = %#v, want nil", i, r["rating"])
		}
	}
	if stats.Defaulted["total_charges"] != 2 {
		t.Errorf("Defaulted[total_charges] = %d, want 2", stats.Defaulted["total_charges"])
	}
}

func TestCoerceUnparseableFallsBackToDefault(t *testing.T) {
	fields := []schema.Field{
		{Name: "monthly_charges", Kind: schema.KindDecimal, Default: decimal.Zero},
	}
	out := Coerce{Fields: fields}.Apply([]records.Record{{"monthly_charges": "n/a"}})
	d, ok := out[0]["monthly_charges"].(decimal.Decimal)
	if !ok || !d.IsZero() {
		t.Errorf("monthly_charges = %#v, want decimal zero", out[0]["monthly_charges"])
	}
}

func TestCoerceTypedPassthroughNotCounted(t *testing.T) {
	fields := []schema.Field{{Name: "population", Kind: schema.KindInt}}
	stats := NewStats()
	Coerce{Fields: fields, Stats: stats}.Apply([]records.Record{{"population": int64(7)}})
	if n := stats.Coerced["population"]; n != 0 {
		t.Errorf("Coerced[population] = %d, want 0 for already-typed value", n)
	}
}
