package feature

// ShiftCausal applies the causality enforcement step: every shiftable column
// is lagged by exactly one position in series order, so the value visible at
// row i was computed at row i-1 and reflects nothing from bar i onward. Row 0
// has no predecessor and becomes fully undefined. The lag is positional, not
// time based, and is applied uniformly to whatever shiftable columns are
// present. Label columns pass through untouched.
func ShiftCausal(raw *Table) *Table {
	shifted := NewTable(raw.Time)

	for _, name := range raw.Names() {
		source := raw.Column(name)

		if raw.Class(name) != ColumnShiftable {
			// addColumn cannot fail here: names and lengths mirror the input
			_ = shifted.AddColumn(name, source.Copy(), raw.Class(name))
			continue
		}

		lagged := undefinedRow(len(source))
		for i := 1; i < len(source); i++ {
			lagged[i] = source[i-1]
		}
		_ = shifted.AddColumn(name, lagged, ColumnShiftable)
	}

	return shifted
}
