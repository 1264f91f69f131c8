package nppes

import (
	"strings"

	"npileads/internal/table"
)

// CleanStats counts the rows removed by each cleaning step, surfaced for
// observability in run logs.
type CleanStats struct {
	MissingNPI   int
	MissingPhone int
	DuplicateNPI int
}

// trimColumns are normalized in place when present. Only NPI and phone are
// hard requirements of this stage.
var trimColumns = []string{
	ColNPI,
	ColFirstName,
	ColLastName,
	ColPhone,
	ColState,
	ColTaxonomyCode,
}

// CleanRows normalizes and prunes the filtered table:
//
//  1. trim leading/trailing whitespace on the working columns (when present),
//  2. drop rows whose NPI is empty after trimming,
//  3. drop rows whose phone is empty after trimming,
//  4. dedup by NPI, first surviving occurrence wins.
//
// The keep-first dedup is a policy decision: later extract rows for an
// already-seen provider are silently discarded. The result has a
// column-unique NPI and no empty required fields.
func CleanRows(t *table.Table) (*table.Table, CleanStats, error) {
	if err := table.RequireColumns(t, ColNPI, ColPhone); err != nil {
		return nil, CleanStats{}, err
	}

	var cols []string
	for _, c := range trimColumns {
		if t.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	for _, row := range t.Rows() {
		for _, c := range cols {
			row[c] = strings.TrimSpace(row[c])
		}
	}

	var stats CleanStats
	out := t.Select(func(r table.Row) bool {
		if r[ColNPI] == "" {
			stats.MissingNPI++
			return false
		}
		if r[ColPhone] == "" {
			stats.MissingPhone++
			return false
		}
		return true
	})

	seen := make(map[string]struct{}, out.Len())
	out = out.Select(func(r table.Row) bool {
		npi := r[ColNPI]
		if _, dup := seen[npi]; dup {
			stats.DuplicateNPI++
			return false
		}
		seen[npi] = struct{}{}
		return true
	})

	return out, stats, nil
}
