package nppes

import "npileads/internal/table"

// FilterOptions narrows FilterDoctors. State defaults to DefaultState when
// empty; the business rule is a parameter rather than a constant baked into
// the stage so future passes can widen the jurisdiction.
type FilterOptions struct {
	State string
}

// FilterDoctors retains the rows of interest: individual providers (entity
// type "1", not "2" which marks organizations), rows carrying the primary
// taxonomy designation ("Y", excluding secondary-specialty duplicate rows for
// the same provider), and the configured state. The three predicates form a
// pure conjunction; row order is preserved and rows are never mutated.
func FilterDoctors(t *table.Table, opts FilterOptions) (*table.Table, error) {
	if err := table.RequireColumns(t, ColEntityType, ColPrimaryTaxonomySwitch, ColState); err != nil {
		return nil, err
	}
	state := opts.State
	if state == "" {
		state = DefaultState
	}
	return t.Select(func(r table.Row) bool {
		return r[ColEntityType] == entityTypeIndividual &&
			r[ColPrimaryTaxonomySwitch] == primaryTaxonomyActive &&
			r[ColState] == state
	}), nil
}
