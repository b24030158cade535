package srcprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestProbeSniffsChurnCSV(t *testing.T) {
	path := writeSample(t, "telco.csv",
		"customerID;gender;MonthlyCharges;TotalCharges;Contract;Churn\n"+
			"0001;Female;29,85;29,85;Month-to-month;No\n")

	res, err := Probe(context.Background(), Options{Path: path, Name: "telco"})
	require.NoError(t, err)

	require.Equal(t, ";", res.Spec.File.Delimiter)
	require.Equal(t, "file", res.Spec.Kind)
	require.Equal(t, "telco", res.Spec.Name)
	require.Equal(t, "customer_churn_data", res.Spec.Target)
	require.Equal(t, []string{"customerID", "gender", "MonthlyCharges", "TotalCharges", "Contract", "Churn"}, res.Headers)
	require.Equal(t, 6, res.Matched["customer_churn_data"])
	require.Equal(t, 1, res.Matched["customer_location"])
	require.Equal(t, 0, res.Matched["zip_population"])
}

func TestProbeStripsBOM(t *testing.T) {
	path := writeSample(t, "bom.csv", "\xEF\xBB\xBFzip_code,population\n90210,12345\n")

	res, err := Probe(context.Background(), Options{Path: path, Name: "zips"})
	require.NoError(t, err)
	require.Equal(t, ",", res.Spec.File.Delimiter)
	require.Equal(t, "zip_code", res.Headers[0])
	require.Equal(t, "zip_population", res.Spec.Target)
}

func TestProbeAmbiguousTargetStaysEmpty(t *testing.T) {
	// customer_id alone resolves one required column in three contracts, so
	// the guess is a tie and the operator has to pick.
	path := writeSample(t, "ambiguous.csv", "customer_id\n0001\n")

	res, err := Probe(context.Background(), Options{Path: path, Name: "mystery"})
	require.NoError(t, err)
	require.Empty(t, res.Spec.Target)
	require.Equal(t, 1, res.Matched["customer_churn_data"])
	require.Equal(t, 1, res.Matched["customer_location"])
	require.Equal(t, 1, res.Matched["customer_reviews"])
}

func TestProbeOptionValidation(t *testing.T) {
	_, err := Probe(context.Background(), Options{Name: "neither"})
	require.Error(t, err)

	_, err = Probe(context.Background(), Options{Path: "a.csv", URL: "http://x/a.csv", Name: "both"})
	require.Error(t, err)
}

func TestProbeEmptySource(t *testing.T) {
	path := writeSample(t, "empty.csv", "")
	_, err := Probe(context.Background(), Options{Path: path, Name: "empty"})
	require.Error(t, err)
}
