package duckdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/schema"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/warehouse"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/pkg/records"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), warehouse.Config{
		Kind: "duckdb",
		Path: filepath.Join(t.TempDir(), "churn.duckdb"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func zipRows() []records.Record {
	return []records.Record{
		{"zip_code": "90001", "population": int64(57110)},
		{"zip_code": "90002", "population": int64(51223)},
	}
}

func TestReplaceRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	n, err := s.Replace(ctx, schema.ZipPopulation, zipRows())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, err := s.Select(ctx, schema.ZipPopulation.Table)
	require.NoError(t, err)
	require.Len(t, got, 2)
	byZip := map[string]any{}
	for _, r := range got {
		byZip[r["zip_code"].(string)] = r["population"]
	}
	require.EqualValues(t, 57110, byZip["90001"])
	require.EqualValues(t, 51223, byZip["90002"])
}

func TestReplaceIsIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		n, err := s.Replace(ctx, schema.ZipPopulation, zipRows())
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	}

	got, err := s.Select(ctx, schema.ZipPopulation.Table)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestFailedReplaceKeepsPriorTable(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, schema.ZipPopulation, zipRows())
	require.NoError(t, err)

	// zip_code is NOT NULL, so this batch fails mid-load and the
	// transaction rolls back.
	bad := []records.Record{
		{"zip_code": "90003", "population": int64(100)},
		{"zip_code": nil, "population": int64(200)},
	}
	_, err = s.Replace(ctx, schema.ZipPopulation, bad)
	require.Error(t, err)

	got, err := s.Select(ctx, schema.ZipPopulation.Table)
	require.NoError(t, err)
	require.Len(t, got, 2)
	zips := map[string]bool{}
	for _, r := range got {
		zips[r["zip_code"].(string)] = true
	}
	require.True(t, zips["90001"] && zips["90002"], "prior rows must survive a failed replace, got %v", zips)
}

func TestReplaceChurnDecimals(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rows := []records.Record{{
		"customer_id":     "0001",
		"gender":          "Female",
		"monthly_charges": decimal.RequireFromString("29.85"),
		"total_charges":   decimal.RequireFromString("29.85"),
		"contract_type":   schema.ContractMonthToMonth,
		"churn":           false,
	}}
	_, err := s.Replace(ctx, schema.CustomerChurn, rows)
	require.NoError(t, err)

	got, err := s.Select(ctx, schema.CustomerChurn.Table)
	require.NoError(t, err)
	require.Len(t, got, 1)

	typed, err := schema.ChurnFromRecord(got[0])
	require.NoError(t, err)
	require.True(t, typed.MonthlyCharges.Equal(decimal.RequireFromString("29.85")))
	require.False(t, typed.Churn)
}
