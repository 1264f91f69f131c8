package nppes

import (
	"strings"

	"npileads/internal/lead"
	"npileads/internal/table"
)

// FormatOutput reshapes the cleaned table into candidate lead records, one
// per row and in row order. The display name is the trimmed first and last
// names joined by a single space, trimmed again so a missing side leaves no
// stray whitespace; both sides empty yields "". No further filtering or
// dedup happens here: CleanRows already guarantees NPI uniqueness and a
// non-empty phone.
func FormatOutput(t *table.Table) ([]lead.Candidate, error) {
	err := table.RequireColumns(t,
		ColNPI, ColFirstName, ColLastName, ColPhone, ColState, ColTaxonomyCode)
	if err != nil {
		return nil, err
	}

	out := make([]lead.Candidate, 0, t.Len())
	for _, row := range t.Rows() {
		first := strings.TrimSpace(row[ColFirstName])
		last := strings.TrimSpace(row[ColLastName])
		out = append(out, lead.Candidate{
			NPI:       strings.TrimSpace(row[ColNPI]),
			Name:      strings.TrimSpace(first + " " + last),
			Phone:     strings.TrimSpace(row[ColPhone]),
			Specialty: strings.TrimSpace(row[ColTaxonomyCode]),
			State:     strings.TrimSpace(row[ColState]),
		})
	}
	return out, nil
}
