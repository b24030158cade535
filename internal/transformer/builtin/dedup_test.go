package builtin

import (
	"testing"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

func TestDeDupKeepLast(t *testing.T) {
	in := []records.Record{
		{"customer_id": "a", "v": 1},
		{"customer_id": "b", "v": 2},
		{"customer_id": "a", "v": 3},
	}
	out := DeDup{Keys: []string{"customer_id"}}.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	for _, r := range out {
		if r["customer_id"] == "a" && r["v"] != 3 {
			t.Errorf("winner for a has v=%v, want 3 (last occurrence)", r["v"])
		}
	}
}

func TestDeDupKeepFirst(t *testing.T) {
	in := []records.Record{
		{"customer_id": "a", "v": 1},
		{"customer_id": "a", "v": 2},
	}
	out := DeDup{Keys: []string{"customer_id"}, KeepFirst: true}.Apply(in)
	if len(out) != 1 || out[0]["v"] != 1 {
		t.Fatalf("got %v, want single record with v=1", out)
	}
}

func TestDeDupMissingKeyPassesThrough(t *testing.T) {
	in := []records.Record{
		{"customer_id": "a"},
		{"other": "x"},
		{"customer_id": "a"},
	}
	out := DeDup{Keys: []string{"customer_id"}}.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (one winner + one passthrough)", len(out))
	}
}

func TestDeDupNoKeysIsNoop(t *testing.T) {
	in := []records.Record{{"a": 1}, {"a": 1}}
	out := DeDup{}.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}

func TestRequireDropsIncompleteRows(t *testing.T) {
	var dropped int
	in := []records.Record{
		{"customer_id": "a", "zip_code": "90001"},
		{"customer_id": nil, "zip_code": "90002"},
		{"zip_code": "90003"},
		{"customer_id": "", "zip_code": "90004"},
	}
	out := Require{Fields: []string{"customer_id"}, Dropped: &dropped}.Apply(in)
	if len(out) != 1 || out[0]["customer_id"] != "a" {
		t.Fatalf("got %v, want only the complete row", out)
	}
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
}

func TestNormalizeTrimsStrings(t *testing.T) {
	in := []records.Record{{"a": "  x  ", "b": 7}}
	out := Normalize{}.Apply(in)
	if out[0]["a"] != "x" {
		t.Errorf("a = %q, want \"x\"", out[0]["a"])
	}
	if out[0]["b"] != 7 {
		t.Errorf("b = %v, want untouched 7", out[0]["b"])
	}
}
