// Package storage persists downloaded candles: a BuntDB cache for repeated
// research runs and a SQL store for durable history.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/raykavin/quantfeat/pkg/core"
	"github.com/tidwall/buntdb"
)

// candleRecord is the JSON layout of a cached candle
type candleRecord struct {
	Pair   string  `json:"pair"`
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// BuntCache stores closed candles in BuntDB keyed by pair, timeframe and
// timestamp so that range scans come back in time order
type BuntCache struct {
	db *buntdb.DB
}

// FromMemory creates an in-memory candle cache
func FromMemory() (*BuntCache, error) {
	return NewBuntCache(":memory:")
}

// FromFile creates a file-backed candle cache
func FromFile(file string) (*BuntCache, error) {
	return NewBuntCache(file)
}

// NewBuntCache opens a BuntDB candle cache
func NewBuntCache(sourceFile string) (*BuntCache, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}
	return &BuntCache{db: db}, nil
}

// candleKey builds a lexically sortable key: zero-padded unix seconds keep
// AscendKeys iteration in time order
func candleKey(pair, timeframe string, t time.Time) string {
	return fmt.Sprintf("%s:%s:%020d", pair, timeframe, t.Unix())
}

// Store saves candles into the cache, overwriting existing timestamps
func (b *BuntCache) Store(timeframe string, candles ...core.Candle) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		for _, candle := range candles {
			record := candleRecord{
				Pair:   candle.Pair,
				Time:   candle.Time.Unix(),
				Open:   candle.Open,
				High:   candle.High,
				Low:    candle.Low,
				Close:  candle.Close,
				Volume: candle.Volume,
			}

			content, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("failed to marshal candle: %w", err)
			}

			if _, _, err := tx.Set(candleKey(candle.Pair, timeframe, candle.Time), string(content), nil); err != nil {
				return fmt.Errorf("failed to store candle: %w", err)
			}
		}
		return nil
	})
}

// Candles returns the cached candles for a pair and timeframe within
// [start, end], ordered by time ascending
func (b *BuntCache) Candles(pair, timeframe string, start, end time.Time) ([]core.Candle, error) {
	candles := make([]core.Candle, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		pattern := fmt.Sprintf("%s:%s:*", pair, timeframe)
		return tx.AscendKeys(pattern, func(_, value string) bool {
			var record candleRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				return true
			}

			t := time.Unix(record.Time, 0).UTC()
			if t.Before(start) || t.After(end) {
				return true
			}

			candles = append(candles, core.Candle{
				Pair:     record.Pair,
				Time:     t,
				Open:     record.Open,
				High:     record.High,
				Low:      record.Low,
				Close:    record.Close,
				Volume:   record.Volume,
				Complete: true,
			})
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cached candles: %w", err)
	}

	return candles, nil
}

// Close closes the underlying database
func (b *BuntCache) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
