package quantfeat

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/raykavin/quantfeat/pkg/exchange"
	"github.com/raykavin/quantfeat/pkg/feature"
	"github.com/stretchr/testify/require"
)

func sampleCandles(n int) []core.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]core.Candle, n)
	for i := range candles {
		candles[i] = core.Candle{
			Pair:     "BTCUSDT",
			Time:     start.Add(time.Duration(i) * 4 * time.Hour),
			Open:     100 + float64(i),
			Close:    100.5 + float64(i),
			Low:      99 + float64(i),
			High:     101 + float64(i),
			Volume:   10,
			Complete: true,
		}
	}
	return candles
}

func TestBuildFromCSVMatchesInMemoryBuild(t *testing.T) {
	candles := sampleCandles(90)
	file := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, exchange.WriteCandlesToCSV(file, candles, 8))

	cfg := feature.DefaultConfig()
	cfg.IncludeLabels = true

	fromFile, err := BuildFromCSV(file, "BTCUSDT", cfg)
	require.NoError(t, err)

	fromMemory, err := BuildFromCandles("BTCUSDT", candles, cfg)
	require.NoError(t, err)

	require.Equal(t, fromMemory.Len(), fromFile.Len())
	require.Equal(t, fromMemory.Names(), fromFile.Names())
}

func TestPrintSummary(t *testing.T) {
	cfg := feature.DefaultConfig()
	cfg.IncludeLabels = true

	fs, err := BuildFromCandles("BTCUSDT", sampleCandles(90), cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, fs))

	out := buf.String()
	require.Contains(t, out, "ret_1")
	require.Contains(t, out, "future_ret")
	require.Contains(t, out, "FUTURE RETURN")
}
