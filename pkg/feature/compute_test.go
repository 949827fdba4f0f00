package feature

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/stretchr/testify/require"
)

func testFrame(closes []float64, volume float64) *core.Dataframe {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]core.Candle, len(closes))
	for i, c := range closes {
		candles[i] = core.Candle{
			Pair:     "BTCUSDT",
			Time:     start.Add(time.Duration(i) * 4 * time.Hour),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			Volume:   volume,
			Complete: true,
		}
	}
	return core.NewDataframe("BTCUSDT", candles)
}

func rampFrame(n int, volume float64) *core.Dataframe {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return testFrame(closes, volume)
}

func TestComputeLogReturns(t *testing.T) {
	df := testFrame([]float64{100, 101, 102, 103, 104}, 10)
	cfg := DefaultConfig()

	table, err := Compute(df, cfg)
	require.NoError(t, err)

	ret1 := table.Column("ret_1")
	require.True(t, math.IsNaN(ret1[0]))
	require.InDelta(t, math.Log(101.0/100.0), ret1[1], 1e-12)
	require.InDelta(t, math.Log(104.0/103.0), ret1[4], 1e-12)

	ret3 := table.Column("ret_3")
	require.True(t, math.IsNaN(ret3[2]))
	require.InDelta(t, math.Log(103.0/100.0), ret3[3], 1e-12)
}

func TestComputeReturnsPositiveForRisingPrices(t *testing.T) {
	df := rampFrame(120, 10)
	cfg := DefaultConfig()

	table, err := Compute(df, cfg)
	require.NoError(t, err)

	for _, period := range cfg.ReturnPeriods {
		col := table.Column(retColumn(period))
		for i := period; i < len(col); i++ {
			require.Greater(t, col[i], 0.0, "%s at %d", retColumn(period), i)
		}
	}
}

func TestComputeEMARecurrence(t *testing.T) {
	closes := core.Series[float64]{1, 2, 3}
	values := ema(closes, 2)

	// alpha = 2/3, seeded with the first close
	require.InDelta(t, 1.0, values[0], 1e-12)
	require.InDelta(t, 5.0/3.0, values[1], 1e-12)
	require.InDelta(t, 23.0/9.0, values[2], 1e-12)
}

func TestComputeEMADefinedFromFirstBar(t *testing.T) {
	df := testFrame([]float64{100, 101, 102, 103, 104}, 10)

	table, err := Compute(df, DefaultConfig())
	require.NoError(t, err)

	for _, span := range []int{12, 24, 48} {
		col := table.Column(emaColumn(span))
		require.InDelta(t, 100.0, col[0], 1e-12)
		for i := range col {
			require.False(t, math.IsNaN(col[i]), "ema_%d at %d", span, i)
		}
	}
}

func TestComputePriceEMARatio(t *testing.T) {
	df := testFrame([]float64{100, 110, 120}, 10)

	table, err := Compute(df, DefaultConfig())
	require.NoError(t, err)

	emaCol := table.Column("ema_12")
	ratio := table.Column("close_ema_12_ratio")
	for i, c := range df.Close {
		require.InDelta(t, c/emaCol[i]-1, ratio[i], 1e-12)
	}
	// the seed equals the first close, so the first ratio is exactly zero
	require.InDelta(t, 0.0, ratio[0], 1e-12)
}

func TestRealizedVolatilityWarmupBoundary(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 104, 108}
	ret1 := logReturns(core.Series[float64](closes), 1)

	values := realizedVolatility(ret1, 2, VolRootSumSquares)

	// ret_1 starts at position 1, so a 2-value window first fills at position 2
	require.True(t, math.IsNaN(values[0]))
	require.True(t, math.IsNaN(values[1]))
	want := math.Sqrt(ret1[1]*ret1[1] + ret1[2]*ret1[2])
	require.InDelta(t, want, values[2], 1e-12)
}

func TestRealizedVolatilityEstimators(t *testing.T) {
	closes := core.Series[float64]{100, 102, 101, 105, 104, 108, 110}
	ret1 := logReturns(closes, 1)
	window := 3

	rss := realizedVolatility(ret1, window, VolRootSumSquares)
	sample := realizedVolatility(ret1, window, VolSampleStdDev)
	population := realizedVolatility(ret1, window, VolPopulationStdDev)

	for t0 := window; t0 < len(ret1); t0++ {
		require.False(t, math.IsNaN(rss[t0]))
		require.False(t, math.IsNaN(sample[t0]))
		require.False(t, math.IsNaN(population[t0]))
		// sample std uses n-1 in the denominator, population uses n
		require.Greater(t, sample[t0], population[t0])
	}
}

func TestRollingMeanWarmupBoundary(t *testing.T) {
	volumes := core.Series[float64]{10, 20, 30, 40, 50}

	values := rollingMean(volumes, 3)

	require.True(t, math.IsNaN(values[0]))
	require.True(t, math.IsNaN(values[1]))
	require.InDelta(t, 20.0, values[2], 1e-12)
	require.InDelta(t, 30.0, values[3], 1e-12)
	require.InDelta(t, 40.0, values[4], 1e-12)
}

func TestRollingMeanShorterThanWindow(t *testing.T) {
	values := rollingMean(core.Series[float64]{10, 20}, 30)
	for _, v := range values {
		require.True(t, math.IsNaN(v))
	}
}

func TestADVFirstDefinedAtWindowBoundary(t *testing.T) {
	df := rampFrame(40, 10)

	table, err := Compute(df, DefaultConfig())
	require.NoError(t, err)

	adv := table.Column("adv_30")
	require.True(t, math.IsNaN(adv[28]))
	require.InDelta(t, 10.0, adv[29], 1e-12)
}

func TestComputeRejectsZeroVolume(t *testing.T) {
	df := testFrame([]float64{100, 101, 102}, 0)

	_, err := Compute(df, DefaultConfig())
	var domainErr *core.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, core.ColumnVolume, domainErr.Column)
}

func TestComputeRejectsNonPositiveClose(t *testing.T) {
	df := testFrame([]float64{100, 101, 102}, 10)
	df.Close[1] = -5

	_, err := Compute(df, DefaultConfig())
	var domainErr *core.DomainError
	require.ErrorAs(t, err, &domainErr)
}

func TestComputeRejectsNonMonotonicTimestamps(t *testing.T) {
	df := testFrame([]float64{100, 101, 102}, 10)
	df.Time[2] = df.Time[1]

	_, err := Compute(df, DefaultConfig())
	require.True(t, errors.Is(err, core.ErrNonMonotonicTimestamp))
}

func TestComputeRejectsColumnLengthMismatch(t *testing.T) {
	df := testFrame([]float64{100, 101, 102}, 10)
	df.Volume = df.Volume[:2]

	_, err := Compute(df, DefaultConfig())
	var schemaErr *core.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, core.ColumnVolume, schemaErr.Column)
}
