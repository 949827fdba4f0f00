package feature

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/samber/lo"
)

// ErrCausalityViolation is returned when a shifted column does not equal the
// raw column lagged by one position, meaning a feature would leak information
// from its own bar or later.
var ErrCausalityViolation = errors.New("causality violation")

// FeatureSet is the assembled output table: timestamps, the shifted feature
// columns in canonical order and, when requested, the future_ret label.
type FeatureSet struct {
	Time []time.Time

	names     []string
	columns   map[string]core.Series[float64]
	hasLabels bool
}

// Len returns the number of rows
func (fs *FeatureSet) Len() int { return len(fs.Time) }

// HasLabels reports whether the future_ret column is present
func (fs *FeatureSet) HasLabels() bool { return fs.hasLabels }

// Names returns every column name in canonical order, label included
func (fs *FeatureSet) Names() []string { return fs.names }

// FeatureNames returns the model input columns, excluding the label. This is
// the list exported with trained artifacts.
func (fs *FeatureSet) FeatureNames() []string {
	return lo.Filter(fs.names, func(name string, _ int) bool {
		return name != LabelFutureReturn
	})
}

// Column returns the values of a column, or nil when absent
func (fs *FeatureSet) Column(name string) core.Series[float64] {
	return fs.columns[name]
}

// Row returns the values of row i following the canonical column order
func (fs *FeatureSet) Row(i int) []float64 {
	values := make([]float64, len(fs.names))
	for c, name := range fs.names {
		values[c] = fs.columns[name][i]
	}
	return values
}

// Build runs the whole transformation: compute raw features, shift them for
// causality, attach the label when requested and assemble the final table.
// Any stage failure aborts the pipeline with no partial output.
func Build(df *core.Dataframe, cfg Config) (*FeatureSet, error) {
	raw, err := Compute(df, cfg)
	if err != nil {
		return nil, err
	}

	shifted := ShiftCausal(raw)

	if cfg.IncludeLabels {
		if err := AttachFutureReturn(shifted, df.Close); err != nil {
			return nil, err
		}
	}

	return Assemble(raw, shifted, cfg)
}

// Assemble merges the shifted table into the canonical column order, checks
// the causality invariant against the raw table and applies the configured
// warm-up policy. The label column, when present, is exempt from both the
// causality lag and the warm-up accounting.
func Assemble(raw, shifted *Table, cfg Config) (*FeatureSet, error) {
	if err := validateCausality(raw, shifted); err != nil {
		return nil, err
	}

	ordered := cfg.FeatureNames()
	for _, name := range ordered {
		if shifted.Column(name) == nil {
			return nil, &core.SchemaError{Column: name, Reason: "feature column missing from shifted table"}
		}
	}

	hasLabels := shifted.Column(LabelFutureReturn) != nil
	if hasLabels {
		ordered = append(ordered, LabelFutureReturn)
	}

	fs := &FeatureSet{
		Time:      append([]time.Time(nil), shifted.Time...),
		names:     ordered,
		columns:   make(map[string]core.Series[float64], len(ordered)),
		hasLabels: hasLabels,
	}
	for _, name := range ordered {
		fs.columns[name] = shifted.Column(name).Copy()
	}

	if cfg.Warmup == WarmupDrop {
		fs.dropUndefinedRows()
	}

	return fs, nil
}

// validateCausality verifies shifted[i] == raw[i-1] for every shiftable
// column and that row 0 is fully undefined after shifting
func validateCausality(raw, shifted *Table) error {
	for _, name := range shifted.Names() {
		if shifted.Class(name) != ColumnShiftable {
			continue
		}

		source := raw.Column(name)
		lagged := shifted.Column(name)
		if source == nil || len(source) != len(lagged) {
			return &core.SchemaError{Column: name, Reason: "shifted column has no matching raw column"}
		}

		if len(lagged) > 0 && !math.IsNaN(lagged[0]) {
			return fmt.Errorf("%w: column %q is defined at row 0", ErrCausalityViolation, name)
		}
		for i := 1; i < len(lagged); i++ {
			if !sameValue(lagged[i], source[i-1]) {
				return fmt.Errorf("%w: column %q row %d does not equal the previous raw value",
					ErrCausalityViolation, name, i)
			}
		}
	}
	return nil
}

// dropUndefinedRows removes every row where at least one feature column is
// NaN. A NaN label alone does not disqualify a row: the last row always lacks
// a label and dropping it is the trainer's decision.
func (fs *FeatureSet) dropUndefinedRows() {
	features := fs.FeatureNames()

	keep := make([]int, 0, len(fs.Time))
	for i := range fs.Time {
		defined := true
		for _, name := range features {
			if math.IsNaN(fs.columns[name][i]) {
				defined = false
				break
			}
		}
		if defined {
			keep = append(keep, i)
		}
	}

	times := make([]time.Time, len(keep))
	pruned := make(map[string]core.Series[float64], len(fs.names))
	for _, name := range fs.names {
		pruned[name] = make(core.Series[float64], len(keep))
	}
	for row, i := range keep {
		times[row] = fs.Time[i]
		for _, name := range fs.names {
			pruned[name][row] = fs.columns[name][i]
		}
	}

	fs.Time = times
	fs.columns = pruned
}
