// Package analytics implements the read side: filtering materialized churn
// rows and computing the KPI aggregates the dashboard reports.
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
)

// ChurnState selects customers by churn flag.
type ChurnState string

const (
	StateChurned ChurnState = "churned"
	StateActive  ChurnState = "active"
)

// Range is an inclusive numeric interval. Nil bounds are open ends.
type Range struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v decimal.Decimal) bool {
	if r.Min != nil && v.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && v.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// FilterSpec is a conjunction of optional predicates. A nil predicate is
// omitted and passes every row; a present-but-empty set matches nothing.
// The distinction carries through JSON: an absent key decodes to nil, an
// explicit empty list decodes to a pointer to an empty slice.
type FilterSpec struct {
	ContractTypes *[]string     `json:"contract_types,omitempty"`
	MonthlyRange  *Range        `json:"monthly_range,omitempty"`
	ChurnStates   *[]ChurnState `json:"churn_states,omitempty"`
}

// Validate rejects unknown contract types and churn states up front so a
// typo surfaces as an error instead of an empty result set.
func (f FilterSpec) Validate() error {
	if f.ContractTypes != nil {
		known := map[string]bool{}
		for _, ct := range schema.ContractTypes {
			known[ct] = true
		}
		for _, ct := range *f.ContractTypes {
			if !known[ct] {
				return fmt.Errorf("unknown contract type %q", ct)
			}
		}
	}
	if f.ChurnStates != nil {
		for _, st := range *f.ChurnStates {
			if st != StateChurned && st != StateActive {
				return fmt.Errorf("unknown churn state %q", st)
			}
		}
	}
	if f.MonthlyRange != nil && f.MonthlyRange.Min != nil && f.MonthlyRange.Max != nil {
		if f.MonthlyRange.Min.GreaterThan(*f.MonthlyRange.Max) {
			return fmt.Errorf("monthly range min %s exceeds max %s",
				f.MonthlyRange.Min, f.MonthlyRange.Max)
		}
	}
	return nil
}

// Match reports whether a row satisfies every present predicate.
func (f FilterSpec) Match(r schema.CustomerChurnRecord) bool {
	if f.ContractTypes != nil && !containsString(*f.ContractTypes, r.ContractType) {
		return false
	}
	if f.MonthlyRange != nil && !f.MonthlyRange.Contains(r.MonthlyCharges) {
		return false
	}
	if f.ChurnStates != nil {
		want := StateActive
		if r.Churn {
			want = StateChurned
		}
		if !containsState(*f.ChurnStates, want) {
			return false
		}
	}
	return true
}

// Apply returns the rows matching the filter, preserving input order. The
// input slice is never mutated.
func (f FilterSpec) Apply(rows []schema.CustomerChurnRecord) []schema.CustomerChurnRecord {
	out := make([]schema.CustomerChurnRecord, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsState(set []ChurnState, v ChurnState) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
