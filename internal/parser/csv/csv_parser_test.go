package csv

import (
	"strings"
	"testing"
)

func TestParseSemicolonDelimited(t *testing.T) {
	input := "customerID;gender;MonthlyCharges\n" +
		"0001-ABCD;Female;29.85\n" +
		"0002-EFGH;Male;56.95\n"

	p := NewParser(Options{HasHeader: true, Comma: ';'})
	rows, skipped, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["customerID"] != "0001-ABCD" {
		t.Errorf("customerID = %#v", rows[0]["customerID"])
	}
	if rows[1]["MonthlyCharges"] != "56.95" {
		t.Errorf("MonthlyCharges = %#v", rows[1]["MonthlyCharges"])
	}
}

func TestParseBlankCellBecomesNil(t *testing.T) {
	input := "customerID;TotalCharges\n0001;\n"
	p := NewParser(Options{HasHeader: true, Comma: ';'})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1; blank cells must not drop rows", len(rows))
	}
	if rows[0]["TotalCharges"] != nil {
		t.Errorf("TotalCharges = %#v, want nil for blank cell", rows[0]["TotalCharges"])
	}
}

func TestParseSkipsWrongWidthRows(t *testing.T) {
	input := "a,b\n1,2\n1,2,3\n4,5\n"
	p := NewParser(Options{HasHeader: true})
	rows, skipped, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("len(rows) = %d, want 2", len(rows))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestParseStripsBOM(t *testing.T) {
	input := "\ufeffcustomerID,gender\n0001,F\n"
	p := NewParser(Options{HasHeader: true})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := rows[0]["customerID"]; !ok {
		t.Errorf("BOM not stripped from first header; keys = %v", rows[0])
	}
}

func TestParseHeaderMap(t *testing.T) {
	input := "Zip Code,Population\n90003,36820\n"
	p := NewParser(Options{
		HasHeader: true,
		HeaderMap: map[string]string{"Zip Code": "zip_code"},
	})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rows[0]["zip_code"] != "90003" {
		t.Errorf("zip_code = %#v; headers = %v", rows[0]["zip_code"], rows[0])
	}
}

func TestParseNoHeaderSynthesizesColumns(t *testing.T) {
	input := "1,2\n3,4\n"
	p := NewParser(Options{ExpectedFields: 2})
	rows, _, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rows[0]["col_0"] != "1" || rows[1]["col_1"] != "4" {
		t.Errorf("rows = %v", rows)
	}
}
