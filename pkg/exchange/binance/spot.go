// Package binance implements the Binance spot market data feeder.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"
	"github.com/raykavin/quantfeat/pkg/core"
)

const maxRetries = 5

// Spot is a data-only client for Binance spot markets. It serves fully closed
// candles; the unclosed head candle is always discarded.
type Spot struct {
	client *binance.Client
}

// SpotOption is a function that configures a Spot client
type SpotOption func(*Spot)

// WithCredentials sets the API credentials for the Spot client
func WithCredentials(key, secret string) SpotOption {
	return func(s *Spot) {
		s.client = binance.NewClient(key, secret)
	}
}

// WithTestNet enables the Binance testnet
func WithTestNet() SpotOption {
	return func(_ *Spot) {
		binance.UseTestnet = true
	}
}

// NewSpot creates a new Binance spot market data client
func NewSpot(ctx context.Context, options ...SpotOption) (*Spot, error) {
	spot := &Spot{
		client: binance.NewClient("", ""),
	}

	for _, option := range options {
		option(spot)
	}

	if err := spot.client.NewPingService().Do(ctx); err != nil {
		return nil, fmt.Errorf("binance ping fail: %w", err)
	}

	return spot, nil
}

// newBackoff creates a retry backoff with sensible defaults
func newBackoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 1 * time.Second,
	}
}

// CandlesByLimit gets the most recent closed candles for a pair. One extra
// candle is requested and dropped because the exchange never guarantees the
// newest candle is closed.
func (s *Spot) CandlesByLimit(ctx context.Context, pair, timeframe string, limit int) ([]core.Candle, error) {
	data, err := s.klines(ctx, func(service *binance.KlinesService) *binance.KlinesService {
		return service.Symbol(pair).Interval(timeframe).Limit(limit + 1)
	})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		data = data[:len(data)-1]
	}

	candles := make([]core.Candle, 0, len(data))
	for _, d := range data {
		candles = append(candles, convertKlineToCandle(pair, *d))
	}
	return candles, nil
}

// CandlesByPeriod gets candles for a pair within a time range. A candle whose
// close time has not passed yet is discarded.
func (s *Spot) CandlesByPeriod(ctx context.Context, pair, timeframe string,
	start, end time.Time) ([]core.Candle, error) {

	data, err := s.klines(ctx, func(service *binance.KlinesService) *binance.KlinesService {
		return service.Symbol(pair).
			Interval(timeframe).
			StartTime(start.UnixNano() / int64(time.Millisecond)).
			EndTime(end.UnixNano() / int64(time.Millisecond))
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candles := make([]core.Candle, 0, len(data))
	for _, d := range data {
		closeTime := time.Unix(0, d.CloseTime*int64(time.Millisecond))
		if closeTime.After(now) {
			continue
		}
		candles = append(candles, convertKlineToCandle(pair, *d))
	}
	return candles, nil
}

// klines runs a kline request with retry backoff on transient failures
func (s *Spot) klines(ctx context.Context,
	configure func(*binance.KlinesService) *binance.KlinesService) ([]*binance.Kline, error) {

	retry := newBackoff()
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		data, err := configure(s.client.NewKlinesService()).Do(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.Duration()):
		}
	}

	return nil, fmt.Errorf("kline request failed after %d attempts: %w", maxRetries, lastErr)
}

// convertKlineToCandle converts a Binance kline to a core.Candle
func convertKlineToCandle(pair string, k binance.Kline) core.Candle {
	t := time.Unix(0, k.OpenTime*int64(time.Millisecond))
	candle := core.Candle{
		Pair:     pair,
		Time:     t,
		Complete: true,
	}

	candle.Open, _ = strconv.ParseFloat(k.Open, 64)
	candle.Close, _ = strconv.ParseFloat(k.Close, 64)
	candle.High, _ = strconv.ParseFloat(k.High, 64)
	candle.Low, _ = strconv.ParseFloat(k.Low, 64)
	candle.Volume, _ = strconv.ParseFloat(k.Volume, 64)

	return candle
}
