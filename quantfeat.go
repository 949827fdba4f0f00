// Package quantfeat turns OHLCV candle history into a leakage-free feature
// table for supervised learning: every feature column is lagged one bar
// behind the prices it was computed from, while the training label is built
// forward-looking from raw closes.
package quantfeat

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/raykavin/quantfeat/pkg/exchange"
	"github.com/raykavin/quantfeat/pkg/feature"
	"github.com/raykavin/quantfeat/pkg/metric"
)

// BuildFromCSV reads a candle CSV file and runs the full feature pipeline
func BuildFromCSV(file, pair string, cfg feature.Config) (*feature.FeatureSet, error) {
	df, err := exchange.ReadDataframe(file, pair)
	if err != nil {
		return nil, err
	}
	return feature.Build(df, cfg)
}

// BuildFromCandles runs the full feature pipeline over in-memory candles
func BuildFromCandles(pair string, candles []core.Candle, cfg feature.Config) (*feature.FeatureSet, error) {
	return feature.Build(core.NewDataframe(pair, candles), cfg)
}

// PrintSummary writes per-column statistics for a feature set and, when
// labels are present, a histogram of the future return distribution
func PrintSummary(out io.Writer, fs *feature.FeatureSet) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Column", "Defined", "Missing", "Mean", "Std", "Min", "Max"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	for _, name := range fs.Names() {
		summary := metric.Summarize(name, fs.Column(name))
		table.Append([]string{
			summary.Name,
			strconv.Itoa(summary.Count),
			strconv.Itoa(summary.Missing),
			fmt.Sprintf("%.6f", summary.Mean),
			fmt.Sprintf("%.6f", summary.StdDev),
			fmt.Sprintf("%.6f", summary.Min),
			fmt.Sprintf("%.6f", summary.Max),
		})
	}
	table.Render()

	if !fs.HasLabels() {
		return nil
	}

	returns := metric.Defined(fs.Column(feature.LabelFutureReturn))
	if len(returns) == 0 {
		return nil
	}

	fmt.Fprintln(out, "------ FUTURE RETURN (%) -------")
	returnsPercent := make([]float64, len(returns))
	for i, r := range returns {
		returnsPercent[i] = r * 100
	}
	hist := histogram.Hist(15, returnsPercent)
	return histogram.Fprint(out, hist, histogram.Linear(10))
}
