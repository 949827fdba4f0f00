package core

import (
	"math"
	"time"
)

// Dataframe is a columnar container for a single instrument's OHLCV series,
// aligned by bar position
type Dataframe struct {
	Pair string

	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Close  Series[float64]
	Volume Series[float64]

	Time       []time.Time
	LastUpdate time.Time
}

// NewDataframe builds a dataframe from an ordered slice of candles
func NewDataframe(pair string, candles []Candle) *Dataframe {
	df := &Dataframe{
		Pair:   pair,
		Open:   make(Series[float64], 0, len(candles)),
		High:   make(Series[float64], 0, len(candles)),
		Low:    make(Series[float64], 0, len(candles)),
		Close:  make(Series[float64], 0, len(candles)),
		Volume: make(Series[float64], 0, len(candles)),
		Time:   make([]time.Time, 0, len(candles)),
	}

	for _, candle := range candles {
		df.Open = append(df.Open, candle.Open)
		df.High = append(df.High, candle.High)
		df.Low = append(df.Low, candle.Low)
		df.Close = append(df.Close, candle.Close)
		df.Volume = append(df.Volume, candle.Volume)
		df.Time = append(df.Time, candle.Time)
	}

	if len(candles) > 0 {
		df.LastUpdate = candles[len(candles)-1].Time
	}

	return df
}

// Len returns the number of bars in the dataframe
func (df *Dataframe) Len() int {
	return len(df.Time)
}

// Validate checks the structural invariants of the series: equal column
// lengths, at least one bar, strictly increasing unique timestamps, strictly
// positive finite prices and finite non-negative volume
func (df *Dataframe) Validate() error {
	if len(df.Time) == 0 {
		return ErrEmptySeries
	}

	columns := []struct {
		name   string
		values Series[float64]
	}{
		{ColumnOpen, df.Open},
		{ColumnHigh, df.High},
		{ColumnLow, df.Low},
		{ColumnClose, df.Close},
		{ColumnVolume, df.Volume},
	}

	for _, column := range columns {
		if column.values == nil {
			return &SchemaError{Column: column.name, Reason: "column is missing"}
		}
		if len(column.values) != len(df.Time) {
			return &SchemaError{Column: column.name, Reason: "column length does not match timestamps"}
		}
	}

	for i := 1; i < len(df.Time); i++ {
		if !df.Time[i].After(df.Time[i-1]) {
			return &TimestampError{Index: i, Previous: df.Time[i-1], Current: df.Time[i]}
		}
	}

	for _, column := range columns {
		isPrice := column.name != ColumnVolume
		for i, value := range column.values {
			if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || (isPrice && value == 0) {
				return &DomainError{Column: column.name, Index: i, Time: df.Time[i], Value: value}
			}
		}
	}

	return nil
}
