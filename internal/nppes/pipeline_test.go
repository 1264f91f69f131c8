package nppes

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"npileads/internal/lead"
)

// writeExtract builds a small NPPES-shaped CSV from row maps keyed by the
// column constants.
func writeExtract(t *testing.T, rows []map[string]string) string {
	t.Helper()
	cols := providerColumns()
	path := filepath.Join(t.TempDir(), "npi_raw.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, row := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = row[c]
		}
		if err := w.Write(rec); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush fixture: %v", err)
	}
	return path
}

func TestLeadsEndToEnd(t *testing.T) {
	path := writeExtract(t, []map[string]string{
		{
			ColNPI: "111", ColEntityType: "1", ColPrimaryTaxonomySwitch: "Y", ColState: "TX",
			ColFirstName: "Ann", ColLastName: "Lee", ColPhone: "555-0001", ColTaxonomyCode: "207RP1001X",
		},
		{
			ColNPI: "222", ColEntityType: "2", ColPrimaryTaxonomySwitch: "Y", ColState: "TX",
			ColFirstName: "Org", ColLastName: "Inc", ColPhone: "555-0002", ColTaxonomyCode: "207RP1001X",
		},
		{
			ColNPI: "111", ColEntityType: "1", ColPrimaryTaxonomySwitch: "Y", ColState: "TX",
			ColFirstName: "Ann", ColLastName: "Lee", ColPhone: "555-9999", ColTaxonomyCode: "207RP1001X",
		},
	})

	leads, sum, err := Leads(path, Options{})
	if err != nil {
		t.Fatalf("Leads: %v", err)
	}
	want := []lead.Candidate{
		{NPI: "111", Name: "Ann Lee", Phone: "555-0001", Specialty: "207RP1001X", State: "TX"},
	}
	if !reflect.DeepEqual(leads, want) {
		t.Fatalf("got %#v\nwant %#v", leads, want)
	}
	if sum.RawRows != 3 || sum.FilteredRows != 2 || sum.CleanedRows != 1 {
		t.Fatalf("summary %+v", sum)
	}
	if sum.Clean.DuplicateNPI != 1 {
		t.Fatalf("summary %+v, want one duplicate counted", sum)
	}
}

func TestLeadsPreservesLeadingZeros(t *testing.T) {
	path := writeExtract(t, []map[string]string{
		{
			ColNPI: "0001234567", ColEntityType: "1", ColPrimaryTaxonomySwitch: "Y", ColState: "TX",
			ColFirstName: "Zed", ColLastName: "Null", ColPhone: "555-0003", ColTaxonomyCode: "NA",
		},
	})
	leads, _, err := Leads(path, Options{})
	if err != nil {
		t.Fatalf("Leads: %v", err)
	}
	if len(leads) != 1 || leads[0].NPI != "0001234567" {
		t.Fatalf("got %#v, want the identifier verbatim", leads)
	}
	if leads[0].Specialty != "NA" {
		t.Fatalf("specialty=%q, want literal NA kept as data", leads[0].Specialty)
	}
}

func TestLeadsMissingSource(t *testing.T) {
	_, _, err := Leads(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
