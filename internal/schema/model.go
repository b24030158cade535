package schema

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

// CustomerChurnRecord is one row of the customer_churn_data fact table.
type CustomerChurnRecord struct {
	CustomerID     string          `db:"customer_id" json:"customer_id"`
	Gender         string          `db:"gender" json:"gender"`
	MonthlyCharges decimal.Decimal `db:"monthly_charges" json:"monthly_charges"`
	TotalCharges   decimal.Decimal `db:"total_charges" json:"total_charges"`
	ContractType   string          `db:"contract_type" json:"contract_type"`
	Churn          bool            `db:"churn" json:"churn"`
}

// ChurnLabel renders the churn flag the way the dashboard shows it.
func (r CustomerChurnRecord) ChurnLabel() string {
	if r.Churn {
		return "Churned"
	}
	return "Active"
}

// CustomerLocationRecord is one row of the customer_location dimension.
type CustomerLocationRecord struct {
	CustomerID string  `db:"customer_id" json:"customer_id"`
	ZipCode    string  `db:"zip_code" json:"zip_code"`
	Latitude   float64 `db:"latitude" json:"latitude"`
	Longitude  float64 `db:"longitude" json:"longitude"`
}

// ZipPopulationRecord is one row of the zip_population reference dimension.
type ZipPopulationRecord struct {
	ZipCode    string `db:"zip_code" json:"zip_code"`
	Population int64  `db:"population" json:"population"`
}

// CustomerReviewRecord is one review document. Rating is nil when the
// reviewer left no score.
type CustomerReviewRecord struct {
	CustomerID string `db:"customer_id" json:"customer_id"`
	ReviewDate string `db:"review_date" json:"review_date"`
	Sequence   int64  `db:"sequence" json:"sequence"`
	Rating     *int64 `db:"rating" json:"rating,omitempty"`
	Comment    string `db:"comment" json:"comment"`
	Tags       string `db:"tags" json:"tags"`
}

// ChurnFromRecord converts a warehouse row back into a typed fact record.
// Drivers return different concrete types per backend (float64 from DuckDB,
// pgtype-decoded values from pgx), so each field is converted defensively.
func ChurnFromRecord(r records.Record) (CustomerChurnRecord, error) {
	out := CustomerChurnRecord{
		CustomerID:   asText(r["customer_id"]),
		Gender:       asText(r["gender"]),
		ContractType: asText(r["contract_type"]),
	}
	var err error
	if out.MonthlyCharges, err = asDecimal(r["monthly_charges"]); err != nil {
		return out, fmt.Errorf("monthly_charges: %w", err)
	}
	if out.TotalCharges, err = asDecimal(r["total_charges"]); err != nil {
		return out, fmt.Errorf("total_charges: %w", err)
	}
	if out.Churn, err = asBool(r["churn"]); err != nil {
		return out, fmt.Errorf("churn: %w", err)
	}
	return out, nil
}

func asText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case string:
		if t == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(t)
	case driver.Valuer:
		// pgtype.Numeric and friends unwrap through their Valuer.
		dv, err := t.Value()
		if err != nil {
			return decimal.Zero, err
		}
		return asDecimal(dv)
	default:
		return decimal.Zero, fmt.Errorf("cannot convert %T to decimal", v)
	}
}

func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case int64:
		return t != 0, nil
	case int:
		return t != 0, nil
	case string:
		return strconv.ParseBool(t)
	default:
		return false, fmt.Errorf("cannot convert %T to bool", v)
	}
}
