package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
)

var hundred = decimal.NewFromInt(100)

// KPIResult carries the headline aggregates for one row population.
// Percentages and averages are rounded half-up to two decimal places.
type KPIResult struct {
	TotalCustomers             int64           `json:"total_customers"`
	ChurnedCustomers           int64           `json:"churned_customers"`
	ChurnRatePct               decimal.Decimal `json:"churn_rate_pct"`
	AvgMonthlyChargesOfChurned decimal.Decimal `json:"avg_monthly_charges_of_churned"`
}

// Summarize computes the KPIs over the given rows. An empty population
// yields an all-zero result, not an error; the same holds for the average
// when nobody churned.
func Summarize(rows []schema.CustomerChurnRecord) KPIResult {
	var res KPIResult
	churnedCharges := decimal.Zero
	for _, r := range rows {
		res.TotalCustomers++
		if r.Churn {
			res.ChurnedCustomers++
			churnedCharges = churnedCharges.Add(r.MonthlyCharges)
		}
	}
	if res.TotalCustomers > 0 {
		rate := decimal.NewFromInt(res.ChurnedCustomers).
			Div(decimal.NewFromInt(res.TotalCustomers)).
			Mul(hundred)
		res.ChurnRatePct = rate.Round(2)
	} else {
		res.ChurnRatePct = decimal.Zero
	}
	if res.ChurnedCustomers > 0 {
		res.AvgMonthlyChargesOfChurned = churnedCharges.
			Div(decimal.NewFromInt(res.ChurnedCustomers)).
			Round(2)
	} else {
		res.AvgMonthlyChargesOfChurned = decimal.Zero
	}
	return res
}

// GroupKPI is one per-group aggregate line.
type GroupKPI struct {
	Key string `json:"key"`
	KPIResult
}

// GroupByContract buckets rows by contract type and summarizes each
// bucket. Groups order by churn rate descending; ties break by key
// ascending so the output is deterministic.
func GroupByContract(rows []schema.CustomerChurnRecord) []GroupKPI {
	buckets := map[string][]schema.CustomerChurnRecord{}
	for _, r := range rows {
		buckets[r.ContractType] = append(buckets[r.ContractType], r)
	}

	out := make([]GroupKPI, 0, len(buckets))
	for key, group := range buckets {
		out = append(out, GroupKPI{Key: key, KPIResult: Summarize(group)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ChurnRatePct.Equal(out[j].ChurnRatePct) {
			return out[i].ChurnRatePct.GreaterThan(out[j].ChurnRatePct)
		}
		return out[i].Key < out[j].Key
	})
	return out
}
