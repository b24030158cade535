package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/connector"
	"github.com/Mohamed-Ehab-Sabry/churn-analytics-platform/internal/errkind"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractCSV(t *testing.T) {
	path := writeTemp(t, "churn.csv",
		"customerID;gender;churn\n0001;F;Yes\n0002;M;No\n")

	e, err := New(connector.Config{
		Name:      "telco",
		Kind:      "file",
		Path:      path,
		Delimiter: ';',
		HasHeader: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rows, m, err := e.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if m.RowCount != 2 || m.Source != "telco" {
		t.Errorf("manifest = %+v", m)
	}
	if rows[0]["customerID"] != "0001" {
		t.Errorf("customerID = %#v", rows[0]["customerID"])
	}
}

func TestExtractJSONL(t *testing.T) {
	path := writeTemp(t, "reviews.jsonl",
		`{"_id":"r1","customer_id":"0001","rating":4}`+"\n")

	e, err := New(connector.Config{
		Name:   "reviews",
		Kind:   "file",
		Path:   path,
		Format: "jsonl",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rows, _, err := e.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if _, ok := rows[0]["_id"]; ok {
		t.Error("_id survived extraction")
	}
}

func TestExtractSurfacesSkippedRows(t *testing.T) {
	path := writeTemp(t, "ragged.csv",
		"customerID;gender;churn\n0001;F;Yes\n0002;M\n0003;F;No\n")

	e, err := New(connector.Config{
		Name:      "telco",
		Kind:      "file",
		Path:      path,
		Delimiter: ';',
		HasHeader: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rows, m, err := e.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if m.Skipped != 1 {
		t.Errorf("manifest.Skipped = %d, want 1", m.Skipped)
	}
	if m.RowCount != 2 {
		t.Errorf("manifest.RowCount = %d, want 2", m.RowCount)
	}
}

func TestExtractMissingFileIsSourceUnavailable(t *testing.T) {
	e, err := New(connector.Config{
		Name:      "ghost",
		Path:      filepath.Join(t.TempDir(), "nope.csv"),
		HasHeader: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, _, err = e.Extract(context.Background())
	if !errkind.Is(err, errkind.SourceUnavailable) {
		t.Fatalf("err = %v, want source_unavailable", err)
	}
}

func TestExtractMalformedJSONLIsSourceFormat(t *testing.T) {
	path := writeTemp(t, "bad.jsonl", "[not,an,object]\n")
	e, err := New(connector.Config{Name: "bad", Path: path, Format: "jsonl"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, _, err = e.Extract(context.Background())
	if !errkind.Is(err, errkind.SourceFormat) {
		t.Fatalf("err = %v, want source_format", err)
	}
}

func TestNewRejectsBadDescriptors(t *testing.T) {
	if _, err := New(connector.Config{Name: "x"}); err == nil {
		t.Error("descriptor without path or url accepted")
	}
	if _, err := New(connector.Config{Name: "x", Path: "a", URL: "http://b"}); err == nil {
		t.Error("descriptor with both path and url accepted")
	}
	if _, err := New(connector.Config{Name: "x", Path: "a", Format: "parquet"}); err == nil {
		t.Error("unsupported format accepted")
	}
}
