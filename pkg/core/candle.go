package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Candle represents a single fully closed OHLCV bar
type Candle struct {
	Pair     string
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Complete bool
}

// GetPair returns the instrument identifier for the candle
func (c Candle) GetPair() string { return c.Pair }

// GetTime returns the open timestamp of the candle
func (c Candle) GetTime() time.Time { return c.Time }

// GetOpen returns the opening price of the candle
func (c Candle) GetOpen() float64 { return c.Open }

// GetHigh returns the highest price during the candle period
func (c Candle) GetHigh() float64 { return c.High }

// GetLow returns the lowest price during the candle period
func (c Candle) GetLow() float64 { return c.Low }

// GetClose returns the closing price of the candle
func (c Candle) GetClose() float64 { return c.Close }

// GetVolume returns the traded volume during the candle period
func (c Candle) GetVolume() float64 { return c.Volume }

// IsComplete returns whether the candle period is closed
func (c Candle) IsComplete() bool { return c.Complete }

// IsEmpty checks if the candle contains no significant data
func (c Candle) IsEmpty() bool { return c.Pair == "" && c.Close == 0 && c.Open == 0 && c.Volume == 0 }

// Validate checks that prices are strictly positive finite values and
// volume is a finite non-negative value
func (c Candle) Validate() error {
	prices := []struct {
		column string
		value  float64
	}{
		{ColumnOpen, c.Open},
		{ColumnHigh, c.High},
		{ColumnLow, c.Low},
		{ColumnClose, c.Close},
	}

	for _, p := range prices {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value <= 0 {
			return &DomainError{Column: p.column, Time: c.Time, Value: p.value}
		}
	}

	if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) || c.Volume < 0 {
		return &DomainError{Column: ColumnVolume, Time: c.Time, Value: c.Volume}
	}

	return nil
}

// ToSlice converts a candle to a string slice for CSV serialization
// with the specified decimal precision
func (c Candle) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", c.Time.Unix()),
		strconv.FormatFloat(c.Open, 'f', precision, 64),
		strconv.FormatFloat(c.Close, 'f', precision, 64),
		strconv.FormatFloat(c.Low, 'f', precision, 64),
		strconv.FormatFloat(c.High, 'f', precision, 64),
		strconv.FormatFloat(c.Volume, 'f', precision, 64),
	}
}
