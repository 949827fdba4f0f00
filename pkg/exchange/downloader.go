package exchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/raykavin/quantfeat/pkg/logger"
	"github.com/raykavin/quantfeat/pkg/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/xhit/go-str2duration/v2"
)

const batchSize = 500

// Feeder is the market data source the downloader pulls closed candles from
type Feeder interface {
	CandlesByPeriod(ctx context.Context, pair, timeframe string, start, end time.Time) ([]core.Candle, error)
	CandlesByLimit(ctx context.Context, pair, timeframe string, limit int) ([]core.Candle, error)
}

// Downloader fetches historical candle data in batches and writes the CSV
// file the feature pipeline reads
type Downloader struct {
	feeder Feeder
	cache  *storage.BuntCache
	log    logger.Logger
}

// DownloaderOption configures optional downloader collaborators
type DownloaderOption func(*Downloader)

// WithCache stores every downloaded candle in the given cache
func WithCache(cache *storage.BuntCache) DownloaderOption {
	return func(d *Downloader) {
		d.cache = cache
	}
}

// NewDownloader creates a downloader for the given feeder
func NewDownloader(feeder Feeder, log logger.Logger, options ...DownloaderOption) Downloader {
	d := Downloader{feeder: feeder, log: log}
	for _, option := range options {
		option(&d)
	}
	return d
}

// Parameters defines the time range for data download
type Parameters struct {
	Start time.Time
	End   time.Time
}

// Option is a function type for configuring download parameters
type Option func(*Parameters)

// WithInterval sets specific start and end times for the download
func WithInterval(start, end time.Time) Option {
	return func(parameters *Parameters) {
		parameters.Start = start
		parameters.End = end
	}
}

// WithDays sets the download period to a specific number of days from now
func WithDays(days int) Option {
	return func(parameters *Parameters) {
		parameters.Start = time.Now().AddDate(0, 0, -days)
		parameters.End = time.Now()
	}
}

// candleCount determines the number of candles in the given timeframe
func candleCount(start, end time.Time, timeframe string) (int, time.Duration, error) {
	interval, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return 0, 0, err
	}
	return int(end.Sub(start) / interval), interval, nil
}

// Download fetches closed candles from the feeder and saves them to a CSV
// file, batch by batch
func (d Downloader) Download(ctx context.Context, pair, timeframe, outputPath string, options ...Option) error {
	recordFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	now := time.Now()
	parameters := &Parameters{Start: now.AddDate(0, 0, -30), End: now}
	for _, option := range options {
		option(parameters)
	}

	// truncate to whole days to keep historical windows reproducible
	parameters.Start = time.Date(parameters.Start.Year(), parameters.Start.Month(), parameters.Start.Day(),
		0, 0, 0, 0, time.UTC)
	parameters.End = time.Date(parameters.End.Year(), parameters.End.Month(), parameters.End.Day(),
		0, 0, 0, 0, time.UTC)

	count, interval, err := candleCount(parameters.Start, parameters.End, timeframe)
	if err != nil {
		return fmt.Errorf("invalid timeframe %q: %w", timeframe, err)
	}
	count++

	d.log.WithField("pair", pair).
		WithField("timeframe", timeframe).
		Infof("downloading %d candles", count)

	writer := csv.NewWriter(recordFile)
	if err := writer.Write(csvHeaders); err != nil {
		return err
	}

	progressBar := progressbar.Default(int64(count))
	lostData := 0
	isLastLoop := false

	for begin := parameters.Start; begin.Before(parameters.End); begin = begin.Add(interval * batchSize) {
		end := begin.Add(interval * batchSize)
		if end.Before(parameters.End) {
			end = end.Add(-interval)
		} else {
			end = parameters.End
			isLastLoop = true
		}

		candles, err := d.feeder.CandlesByPeriod(ctx, pair, timeframe, begin, end)
		if err != nil {
			return err
		}

		for _, candle := range candles {
			if err := writer.Write(candle.ToSlice(8)); err != nil {
				return err
			}
		}

		if d.cache != nil {
			if err := d.cache.Store(timeframe, candles...); err != nil {
				return err
			}
		}

		countCandles := len(candles)
		if !isLastLoop {
			lostData += batchSize - countCandles
		}

		if err := progressBar.Add(countCandles); err != nil {
			d.log.WithError(err).Warn("failed to update progress bar")
		}
	}

	if err := progressBar.Close(); err != nil {
		d.log.WithError(err).Warn("unable to close progress bar")
	}

	if lostData > 0 {
		d.log.Warnf("%d missing candles, exchange history may have gaps", lostData)
	}

	writer.Flush()
	d.log.Info("candles saved to: " + outputPath)
	return writer.Error()
}
