package builtin

import (
	"testing"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

func TestSequenceAssignsPerGroup(t *testing.T) {
	in := []records.Record{
		{"customer_id": "a", "review_date": "2020-03-01", "sequence": nil},
		{"customer_id": "a", "review_date": "2020-03-01", "sequence": nil},
		{"customer_id": "a", "review_date": "2020-03-02", "sequence": nil},
		{"customer_id": "b", "review_date": "2020-03-01", "sequence": nil},
	}
	out := Sequence{Keys: []string{"customer_id", "review_date"}, Field: "sequence"}.Apply(in)

	want := []int64{0, 1, 0, 0}
	for i, r := range out {
		if r["sequence"] != want[i] {
			t.Errorf("row %d sequence = %#v, want %d", i, r["sequence"], want[i])
		}
	}
}

func TestSequenceKeepsCarriedValues(t *testing.T) {
	in := []records.Record{
		{"customer_id": "a", "sequence": int64(5)},
		{"customer_id": "a", "sequence": nil},
	}
	out := Sequence{Keys: []string{"customer_id"}, Field: "sequence"}.Apply(in)

	if out[0]["sequence"] != int64(5) {
		t.Errorf("carried sequence = %#v, want 5", out[0]["sequence"])
	}
	if out[1]["sequence"] != int64(6) {
		t.Errorf("assigned sequence = %#v, want 6 (past the carried value)", out[1]["sequence"])
	}
}

func TestSequenceNoopWithoutField(t *testing.T) {
	in := []records.Record{{"customer_id": "a"}}
	out := Sequence{Keys: []string{"customer_id"}}.Apply(in)
	if _, ok := out[0]["sequence"]; ok {
		t.Errorf("sequence was assigned without a configured field: %#v", out[0])
	}
}
