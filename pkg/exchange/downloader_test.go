package exchange

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/raykavin/quantfeat/pkg/logger"
	"github.com/raykavin/quantfeat/pkg/storage"
	"github.com/stretchr/testify/require"
)

// nopLogger satisfies logger.Logger for tests
type nopLogger struct{}

func (nopLogger) WithField(string, any) logger.Logger     { return nopLogger{} }
func (nopLogger) WithFields(map[string]any) logger.Logger { return nopLogger{} }
func (nopLogger) WithError(error) logger.Logger           { return nopLogger{} }
func (nopLogger) Debug(...any)                            {}
func (nopLogger) Info(...any)                             {}
func (nopLogger) Warn(...any)                             {}
func (nopLogger) Error(...any)                            {}
func (nopLogger) Fatal(...any)                            {}
func (nopLogger) Debugf(string, ...any)                   {}
func (nopLogger) Infof(string, ...any)                    {}
func (nopLogger) Warnf(string, ...any)                    {}
func (nopLogger) Errorf(string, ...any)                   {}
func (nopLogger) Fatalf(string, ...any)                   {}
func (nopLogger) SetLevel(logger.Level)                   {}
func (nopLogger) GetLevel() logger.Level                  { return logger.InfoLevel }

// fakeFeeder serves synthetic hourly candles for any requested period
type fakeFeeder struct{}

func (fakeFeeder) CandlesByPeriod(_ context.Context, pair, _ string, start, end time.Time) ([]core.Candle, error) {
	candles := make([]core.Candle, 0)
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		candles = append(candles, core.Candle{
			Pair: pair, Time: t,
			Open: 100, High: 101, Low: 99, Close: 100.5,
			Volume: 10, Complete: true,
		})
	}
	return candles, nil
}

func (fakeFeeder) CandlesByLimit(_ context.Context, pair, _ string, limit int) ([]core.Candle, error) {
	end := time.Now().UTC().Truncate(time.Hour)
	start := end.Add(-time.Duration(limit-1) * time.Hour)
	return fakeFeeder{}.CandlesByPeriod(context.Background(), pair, "1h", start, end)
}

func TestDownloaderWritesReadableCSV(t *testing.T) {
	output := filepath.Join(t.TempDir(), "download.csv")
	downloader := NewDownloader(fakeFeeder{}, nopLogger{})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	err := downloader.Download(context.Background(), "BTCUSDT", "1h", output,
		WithInterval(start, end))
	require.NoError(t, err)

	df, err := ReadDataframe(output, "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, 49, df.Len())
	require.Equal(t, start, df.Time[0])
}

func TestDownloaderStoresIntoCache(t *testing.T) {
	cache, err := storage.FromMemory()
	require.NoError(t, err)
	defer cache.Close()

	output := filepath.Join(t.TempDir(), "download.csv")
	downloader := NewDownloader(fakeFeeder{}, nopLogger{}, WithCache(cache))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	err = downloader.Download(context.Background(), "BTCUSDT", "1h", output,
		WithInterval(start, end))
	require.NoError(t, err)

	cached, err := cache.Candles("BTCUSDT", "1h", start, end)
	require.NoError(t, err)
	require.Len(t, cached, 25)
}

func TestDownloaderRejectsInvalidTimeframe(t *testing.T) {
	output := filepath.Join(t.TempDir(), "download.csv")
	downloader := NewDownloader(fakeFeeder{}, nopLogger{})

	err := downloader.Download(context.Background(), "BTCUSDT", "bogus", output, WithDays(1))
	require.Error(t, err)
}
