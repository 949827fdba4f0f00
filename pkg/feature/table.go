package feature

import (
	"fmt"
	"math"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
)

// ColumnClass splits table columns into two disjoint groups fixed at
// construction time: columns that must pass through the causal shift, and
// label columns that must never be shifted. The shifter dispatches on the
// class tag, never on column names.
type ColumnClass int

const (
	ColumnShiftable ColumnClass = iota
	ColumnLabel
)

// Table is a positional column store for derived per-bar values. Rows align
// one-to-one with the source series; undefined values are NaN.
type Table struct {
	Time    []time.Time
	names   []string
	columns map[string]core.Series[float64]
	classes map[string]ColumnClass
}

// NewTable creates an empty table aligned with the given timestamps
func NewTable(timestamps []time.Time) *Table {
	return &Table{
		Time:    timestamps,
		columns: make(map[string]core.Series[float64]),
		classes: make(map[string]ColumnClass),
	}
}

// Len returns the number of rows in the table
func (t *Table) Len() int {
	return len(t.Time)
}

// Names returns the column names in insertion order
func (t *Table) Names() []string {
	return t.names
}

// Column returns the values of a column, or nil when absent
func (t *Table) Column(name string) core.Series[float64] {
	return t.columns[name]
}

// Class returns the column group tag for a column
func (t *Table) Class(name string) ColumnClass {
	return t.classes[name]
}

// AddColumn appends a column with its group tag. The column must be new and
// match the table's row count.
func (t *Table) AddColumn(name string, values core.Series[float64], class ColumnClass) error {
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("column %q already present", name)
	}
	if len(values) != len(t.Time) {
		return &core.SchemaError{Column: name, Reason: "column length does not match table rows"}
	}

	t.names = append(t.names, name)
	t.columns[name] = values
	t.classes[name] = class
	return nil
}

// undefinedRow returns a series of the given length filled with NaN
func undefinedRow(length int) core.Series[float64] {
	values := make(core.Series[float64], length)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}

// sameValue compares two cells treating NaN as equal to NaN
func sameValue(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
