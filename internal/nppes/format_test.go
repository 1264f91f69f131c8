package nppes

import (
	"reflect"
	"testing"

	"npileads/internal/lead"
	"npileads/internal/table"
)

func TestFormatOutputNameComposition(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"John", "Smith", "John Smith"},
		{"", "Smith", "Smith"},
		{"John", "", "John"},
		{"", "", ""},
	}
	for _, tc := range cases {
		tbl := table.New(providerColumns(), []table.Row{
			providerRow(map[string]string{ColFirstName: tc.first, ColLastName: tc.last}),
		})
		got, err := FormatOutput(tbl)
		if err != nil {
			t.Fatalf("first=%q last=%q: %v", tc.first, tc.last, err)
		}
		if got[0].Name != tc.want {
			t.Fatalf("first=%q last=%q: name=%q, want %q", tc.first, tc.last, got[0].Name, tc.want)
		}
	}
}

func TestFormatOutputShape(t *testing.T) {
	tbl := table.New(providerColumns(), []table.Row{
		providerRow(map[string]string{ColNPI: "0001234567"}),
		providerRow(map[string]string{ColNPI: "222", ColFirstName: "Bo", ColLastName: "Ray"}),
	})
	got, err := FormatOutput(tbl)
	if err != nil {
		t.Fatalf("FormatOutput: %v", err)
	}
	want := []lead.Candidate{
		{NPI: "0001234567", Name: "Ann Lee", Phone: "555-0001", Specialty: "207RP1001X", State: "TX"},
		{NPI: "222", Name: "Bo Ray", Phone: "555-0001", Specialty: "207RP1001X", State: "TX"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v\nwant %#v", got, want)
	}
}
