package core

import (
	"errors"
	"fmt"
	"time"
)

// Canonical OHLCV column names
const (
	ColumnTime   = "time"
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

var (
	// ErrEmptySeries is returned when a transformation receives no bars
	ErrEmptySeries = errors.New("series contains no bars")

	// ErrNonMonotonicTimestamp is returned when bar timestamps are not
	// strictly increasing
	ErrNonMonotonicTimestamp = errors.New("timestamps must be strictly increasing and unique")
)

// SchemaError reports a structural problem with the input series, such as
// columns of unequal length. The whole transformation is aborted before any
// feature is computed.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error on column %q: %s", e.Column, e.Reason)
}

// TimestampError reports the position where the timestamp ordering breaks.
// It wraps ErrNonMonotonicTimestamp so callers can match with errors.Is.
type TimestampError struct {
	Index    int
	Previous time.Time
	Current  time.Time
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("bar %d: timestamp %s is not after %s",
		e.Index, e.Current.Format(time.RFC3339), e.Previous.Format(time.RFC3339))
}

func (e *TimestampError) Unwrap() error { return ErrNonMonotonicTimestamp }

// DomainError reports a value outside the domain required by a computation,
// such as a non-positive price or volume where a logarithm is taken.
type DomainError struct {
	Column string
	Index  int
	Time   time.Time
	Value  float64
}

func (e *DomainError) Error() string {
	if !e.Time.IsZero() {
		return fmt.Sprintf("domain error on column %q at %s: invalid value %v",
			e.Column, e.Time.Format(time.RFC3339), e.Value)
	}
	return fmt.Sprintf("domain error on column %q at position %d: invalid value %v",
		e.Column, e.Index, e.Value)
}
