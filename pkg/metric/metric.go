// Package metric provides summary statistics over feature columns for
// inspection output.
package metric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary describes one feature column over its defined values
type Summary struct {
	Name    string
	Count   int // defined (non-NaN) values
	Missing int // undefined values
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Summarize computes column statistics over the defined values only.
// A column with no defined values yields NaN statistics and Count 0.
func Summarize(name string, values []float64) Summary {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}

	summary := Summary{
		Name:    name,
		Count:   len(defined),
		Missing: len(values) - len(defined),
		Mean:    math.NaN(),
		StdDev:  math.NaN(),
		Min:     math.NaN(),
		Max:     math.NaN(),
	}
	if len(defined) == 0 {
		return summary
	}

	summary.Mean, summary.StdDev = stat.MeanStdDev(defined, nil)
	summary.Min, summary.Max = defined[0], defined[0]
	for _, v := range defined[1:] {
		summary.Min = math.Min(summary.Min, v)
		summary.Max = math.Max(summary.Max, v)
	}
	return summary
}

// Defined filters out NaN values, preserving order
func Defined(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
