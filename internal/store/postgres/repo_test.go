package postgres

import (
	"reflect"
	"testing"

	"npileads/internal/store"
)

func TestListWhere(t *testing.T) {
	cases := []struct {
		name     string
		filter   store.ListFilter
		want     string
		wantArgs []any
	}{
		{"empty", store.ListFilter{}, "", nil},
		{"state only", store.ListFilter{State: "TX"},
			" WHERE state = $1", []any{"TX"}},
		{"all filters", store.ListFilter{State: "TX", Specialty: "207RP1001X", Search: "smith"},
			" WHERE state = $1 AND specialty = $2 AND name ILIKE $3",
			[]any{"TX", "207RP1001X", "%smith%"}},
		{"search only", store.ListFilter{Search: "Lee"},
			" WHERE name ILIKE $1", []any{"%Lee%"}},
	}
	for _, tc := range cases {
		where, args := listWhere(tc.filter)
		if where != tc.want {
			t.Fatalf("%s: where=%q, want %q", tc.name, where, tc.want)
		}
		if !reflect.DeepEqual(args, tc.wantArgs) {
			t.Fatalf("%s: args=%#v, want %#v", tc.name, args, tc.wantArgs)
		}
	}
}

func TestNullIfEmpty(t *testing.T) {
	if v := nullIfEmpty(""); v != nil {
		t.Fatalf("empty string: got %#v, want nil", v)
	}
	if v := nullIfEmpty("555-0001"); v != "555-0001" {
		t.Fatalf("non-empty string: got %#v", v)
	}
}
