package feature

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/raykavin/quantfeat/pkg/core"
	"gonum.org/v1/gonum/stat"
)

// Compute derives the full unshifted feature table from an OHLCV series.
// Every column is aligned by bar position with the input; positions without
// enough history hold NaN. The input is validated first and any structural or
// domain problem aborts the computation with no partial output.
func Compute(df *core.Dataframe, cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := df.Validate(); err != nil {
		return nil, err
	}

	table := NewTable(df.Time)
	closes := df.Close

	// ret_1 feeds the realized volatility columns even when period 1 is not
	// part of the configured return set
	ret1 := logReturns(closes, 1)

	for _, period := range cfg.ReturnPeriods {
		values := ret1
		if period != 1 {
			values = logReturns(closes, period)
		}
		if err := table.AddColumn(retColumn(period), values, ColumnShiftable); err != nil {
			return nil, err
		}
	}

	emas := make(map[int]core.Series[float64], len(cfg.EMASpans))
	for _, span := range cfg.EMASpans {
		values := ema(closes, span)
		emas[span] = values
		if err := table.AddColumn(emaColumn(span), values, ColumnShiftable); err != nil {
			return nil, err
		}
	}

	for _, span := range cfg.EMASpans {
		if err := table.AddColumn(ratioColumn(span), priceEMARatio(closes, emas[span]), ColumnShiftable); err != nil {
			return nil, err
		}
	}

	for _, window := range cfg.VolWindows {
		values := realizedVolatility(ret1, window, cfg.Estimator)
		if err := table.AddColumn(volColumn(window), values, ColumnShiftable); err != nil {
			return nil, err
		}
	}

	logVol, err := logVolume(df)
	if err != nil {
		return nil, err
	}
	if err := table.AddColumn(columnLogVolume, logVol, ColumnShiftable); err != nil {
		return nil, err
	}

	if err := table.AddColumn(advColumn(cfg.ADVWindow), rollingMean(df.Volume, cfg.ADVWindow), ColumnShiftable); err != nil {
		return nil, err
	}

	return table, nil
}

// logReturns computes ret_n[t] = ln(close[t] / close[t-n]); the first n
// positions have no history and hold NaN
func logReturns(closes core.Series[float64], period int) core.Series[float64] {
	out := undefinedRow(len(closes))
	for t := period; t < len(closes); t++ {
		out[t] = math.Log(closes[t] / closes[t-period])
	}
	return out
}

// ema evaluates the exponential smoothing recurrence with alpha = 2/(span+1),
// seeded with the first raw close. The recurrence carries state left to right
// and is deliberately kept as an explicit fold: unlike the rolling-window
// features it cannot be evaluated out of series order.
func ema(closes core.Series[float64], span int) core.Series[float64] {
	out := make(core.Series[float64], len(closes))
	if len(closes) == 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	acc := closes[0]
	out[0] = acc
	for t := 1; t < len(closes); t++ {
		acc = alpha*closes[t] + (1-alpha)*acc
		out[t] = acc
	}
	return out
}

// priceEMARatio computes close/ema - 1, defined wherever the EMA is
func priceEMARatio(closes, ema core.Series[float64]) core.Series[float64] {
	out := make(core.Series[float64], len(closes))
	for t := range closes {
		out[t] = closes[t]/ema[t] - 1
	}
	return out
}

// realizedVolatility computes the rolling dispersion of ret_1 over the
// trailing window ending at each position. ret_1 itself starts at position 1,
// so the first defined value sits at position `window`.
func realizedVolatility(ret1 core.Series[float64], window int, estimator VolEstimator) core.Series[float64] {
	out := undefinedRow(len(ret1))

	for t := window; t < len(ret1); t++ {
		sample := ret1[t-window+1 : t+1]
		switch estimator {
		case VolSampleStdDev:
			out[t] = stat.StdDev(sample, nil)
		case VolPopulationStdDev:
			out[t] = stat.PopStdDev(sample, nil)
		default:
			var sumSquares float64
			for _, r := range sample {
				sumSquares += r * r
			}
			out[t] = math.Sqrt(sumSquares)
		}
	}
	return out
}

// logVolume computes ln(volume) per bar. The logarithm requires strictly
// positive volume, so a zero bar volume is a domain failure rather than NaN.
func logVolume(df *core.Dataframe) (core.Series[float64], error) {
	out := make(core.Series[float64], len(df.Volume))
	for t, v := range df.Volume {
		if v <= 0 {
			return nil, &core.DomainError{Column: core.ColumnVolume, Index: t, Time: df.Time[t], Value: v}
		}
		out[t] = math.Log(v)
	}
	return out, nil
}

// rollingMean computes the trailing arithmetic mean over the window. talib
// reports zeros inside its lookback zone, which here means "not enough
// history", so those positions are masked back to NaN.
func rollingMean(values core.Series[float64], window int) core.Series[float64] {
	if len(values) < window {
		return undefinedRow(len(values))
	}

	out := core.Series[float64](talib.Sma(values, window))
	for t := 0; t < window-1; t++ {
		out[t] = math.NaN()
	}
	return out
}
