package schema

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMatchKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"customerID", "customerid"},
		{"customer_id", "customerid"},
		{"  Zip_Code ", "zipcode"},
		{"MonthlyCharges", "monthlycharges"},
		{"monthly_charges", "monthlycharges"},
		{"Código_Postal", "codigopostal"},
	}
	for _, tt := range tests {
		if got := MatchKey(tt.in); got != tt.want {
			t.Errorf("MatchKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContractTypeEnumMap(t *testing.T) {
	f, ok := CustomerChurn.Field("contract_type")
	if !ok {
		t.Fatal("contract_type field missing from CustomerChurn")
	}
	tests := []struct {
		in   string
		want string
	}{
		{"month-to-month", ContractMonthToMonth},
		{"month to month", ContractMonthToMonth},
		{"one year", ContractOneYear},
		{"two-year", ContractTwoYear},
	}
	for _, tt := range tests {
		if got := f.EnumMap[tt.in]; got != tt.want {
			t.Errorf("EnumMap[%q] = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestByTableCoversAllContracts(t *testing.T) {
	for _, table := range Tables() {
		c, ok := ByTable(table)
		if !ok {
			t.Fatalf("ByTable(%q) not found", table)
		}
		if c.Table != table {
			t.Errorf("ByTable(%q).Table = %q", table, c.Table)
		}
		if len(c.Fields) == 0 {
			t.Errorf("contract %q has no fields", table)
		}
	}
	if _, ok := ByTable("nope"); ok {
		t.Error("ByTable(nope) unexpectedly found")
	}
}

func TestChurnFromRecord(t *testing.T) {
	rec, err := ChurnFromRecord(map[string]any{
		"customer_id":     "0001-ABCD",
		"gender":          "Female",
		"monthly_charges": 29.85,
		"total_charges":   "1889.50",
		"contract_type":   ContractMonthToMonth,
		"churn":           true,
	})
	if err != nil {
		t.Fatalf("ChurnFromRecord() error = %v", err)
	}
	if rec.CustomerID != "0001-ABCD" {
		t.Errorf("CustomerID = %q", rec.CustomerID)
	}
	if !rec.MonthlyCharges.Equal(decimal.NewFromFloat(29.85)) {
		t.Errorf("MonthlyCharges = %s, want 29.85", rec.MonthlyCharges)
	}
	if !rec.TotalCharges.Equal(decimal.RequireFromString("1889.50")) {
		t.Errorf("TotalCharges = %s, want 1889.50", rec.TotalCharges)
	}
	if !rec.Churn {
		t.Error("Churn = false, want true")
	}
	if got := rec.ChurnLabel(); got != "Churned" {
		t.Errorf("ChurnLabel() = %q, want Churned", got)
	}
}

func TestChurnFromRecordBadValue(t *testing.T) {
	_, err := ChurnFromRecord(map[string]any{
		"customer_id":     "x",
		"monthly_charges": struct{}{},
	})
	if err == nil {
		t.Fatal("expected error for unconvertible monthly_charges")
	}
}
