package nppes

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), LoadOptions{})
	var nf *SourceNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error type %T, want *SourceNotFoundError", err)
	}
	if nf.Path == "" {
		t.Fatal("SourceNotFoundError carries no path")
	}
}

func TestLoadKeepsTextVerbatim(t *testing.T) {
	path := writeCSV(t, "NPI,Note\n0001234567,NA\n")
	tbl, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("rows=%d, want 1", tbl.Len())
	}
	row := tbl.Rows()[0]
	// Leading zeros survive; "NA" is data, not a null marker.
	if row["NPI"] != "0001234567" {
		t.Fatalf("NPI=%q, want leading zeros preserved", row["NPI"])
	}
	if row["Note"] != "NA" {
		t.Fatalf("Note=%q, want literal NA", row["Note"])
	}
}

func TestLoadStripsHeaderBOM(t *testing.T) {
	path := writeCSV(t, "\ufeffNPI,Phone\n111,555\n")
	tbl, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"NPI", "Phone"}; !reflect.DeepEqual(tbl.Columns(), want) {
		t.Fatalf("columns=%v, want %v", tbl.Columns(), want)
	}
}

func TestLoadSkipsShortRows(t *testing.T) {
	path := writeCSV(t, "NPI,Phone\n111,555\n\"222\"\n333,556\n")
	tbl, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows=%d, want malformed row skipped", tbl.Len())
	}
}

func TestFingerprintStable(t *testing.T) {
	path := writeCSV(t, "NPI\n111\n")
	a, err := Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, err := Fingerprint(path)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if a != b || len(a) != 16 {
		t.Fatalf("fingerprints %q / %q, want identical 16-hex strings", a, b)
	}
}
