package feature

import (
	"errors"
	"fmt"

	"github.com/StudioSol/set"
)

// WarmupPolicy controls what happens to leading rows whose windowed features
// have insufficient history. There is no silent default at the pipeline
// boundary: callers choose explicitly.
type WarmupPolicy int

const (
	// WarmupRetain keeps warm-up rows with NaN feature values
	WarmupRetain WarmupPolicy = iota
	// WarmupDrop removes every row where at least one feature column is undefined
	WarmupDrop
)

// VolEstimator selects the dispersion estimator used for the realized
// volatility columns. VolRootSumSquares reproduces the classic realized
// volatility sqrt(sum(ret_1^2)) over the window; the standard deviation
// variants differ only in the denominator (n-1 vs n).
type VolEstimator int

const (
	VolRootSumSquares VolEstimator = iota
	VolSampleStdDev
	VolPopulationStdDev
)

// LabelFutureReturn is the training target column: the one-bar-forward log
// return, computed from raw closes and never shifted.
const LabelFutureReturn = "future_ret"

// Config is the configuration surface of the feature pipeline
type Config struct {
	ReturnPeriods []int
	EMASpans      []int
	VolWindows    []int
	ADVWindow     int
	IncludeLabels bool
	Warmup        WarmupPolicy
	Estimator     VolEstimator
}

// DefaultConfig returns the canonical feature schema configuration
func DefaultConfig() Config {
	return Config{
		ReturnPeriods: []int{1, 3, 6, 12},
		EMASpans:      []int{12, 24, 48},
		VolWindows:    []int{24, 72},
		ADVWindow:     30,
	}
}

// Validate checks that every window and period is usable
func (c Config) Validate() error {
	for _, p := range c.ReturnPeriods {
		if p <= 0 {
			return fmt.Errorf("return period must be positive, got %d", p)
		}
	}
	for _, w := range c.EMASpans {
		if w <= 0 {
			return fmt.Errorf("ema span must be positive, got %d", w)
		}
	}
	for _, w := range c.VolWindows {
		if w <= 0 {
			return fmt.Errorf("volatility window must be positive, got %d", w)
		}
	}
	if c.ADVWindow <= 0 {
		return fmt.Errorf("adv window must be positive, got %d", c.ADVWindow)
	}
	if names := c.FeatureNames(); len(names) == 0 {
		return errors.New("configuration produces no feature columns")
	}
	return nil
}

// FeatureNames returns the canonical feature column order: returns, EMAs,
// price/EMA ratios, realized volatility, log volume, average volume. The
// label column is not part of the feature schema. Duplicated windows collapse
// to a single column.
func (c Config) FeatureNames() []string {
	names := set.NewLinkedHashSetString()

	for _, p := range c.ReturnPeriods {
		names.Add(retColumn(p))
	}
	for _, w := range c.EMASpans {
		names.Add(emaColumn(w))
	}
	for _, w := range c.EMASpans {
		names.Add(ratioColumn(w))
	}
	for _, w := range c.VolWindows {
		names.Add(volColumn(w))
	}
	names.Add(columnLogVolume)
	names.Add(advColumn(c.ADVWindow))

	ordered := make([]string, 0)
	for name := range names.Iter() {
		ordered = append(ordered, name)
	}
	return ordered
}

const columnLogVolume = "log_volume"

func retColumn(period int) string { return fmt.Sprintf("ret_%d", period) }
func emaColumn(span int) string   { return fmt.Sprintf("ema_%d", span) }
func ratioColumn(span int) string { return fmt.Sprintf("close_ema_%d_ratio", span) }
func volColumn(window int) string { return fmt.Sprintf("rv_%d", window) }
func advColumn(window int) string { return fmt.Sprintf("adv_%d", window) }
