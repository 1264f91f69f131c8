// Package table provides a small in-memory model for delimited tabular data:
// an ordered list of rows keyed by the column names of the source header.
// Every cell is a verbatim string; the package performs no type inference, so
// identifiers with leading zeros and literal tokens such as "NA" survive
// exactly as read.
package table

import (
	"fmt"
	"strings"
)

// Row maps a source column name to its raw text value for one record.
type Row map[string]string

// Table is a fully materialized set of rows sharing one column set. Row order
// is stable across the selection and mutation helpers.
type Table struct {
	columns []string
	rows    []Row
}

// New builds a Table from a header-derived column list and pre-built rows.
// The slices are retained, not copied.
func New(columns []string, rows []Row) *Table {
	return &Table{columns: columns, rows: rows}
}

// Columns returns the column names in header order.
func (t *Table) Columns() []string { return t.columns }

// Rows returns the underlying row slice in input order.
func (t *Table) Rows() []Row { return t.rows }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether name is part of the column set.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Select returns a new Table containing the rows for which keep returns true,
// preserving input order and sharing the column list. Rows are not copied.
func (t *Table) Select(keep func(Row) bool) *Table {
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Table{columns: t.columns, rows: out}
}

// MissingColumnsError reports every required column absent from a table. It
// enumerates all missing names so one failure is enough to diagnose a changed
// source layout.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RequireColumns verifies that every named column exists in t. It returns a
// *MissingColumnsError listing all absent names, or nil when the contract
// holds. It never mutates the table.
func RequireColumns(t *Table, required ...string) error {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}
