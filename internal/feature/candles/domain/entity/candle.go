// Package entity defines the domain models for the candles feature.
package entity

import (
	"errors"
	"fmt"
	"time"
)

// Candle represents one OHLCV (Open, High, Low, Close, Volume) record
// for an intraday interval of a single symbol.
type Candle struct {
	Time   time.Time // Start of the interval (upstream timestamps are UTC seconds)
	Open   float64   // Opening price
	High   float64   // Highest price during the interval
	Low    float64   // Lowest price during the interval
	Close  float64   // Closing price
	Volume int64     // Traded volume, never negative
}

// Validation errors for a single candle or a series.
var (
	ErrPriceRange     = errors.New("candle prices outside low/high range")
	ErrNegativeVolume = errors.New("candle volume is negative")
	ErrZeroTime       = errors.New("candle timestamp is zero")
	ErrOutOfOrder     = errors.New("candle series is not strictly ascending")
)

// Validate checks the OHLCV invariant: low <= open,close <= high and a
// non-negative volume.
func (c Candle) Validate() error {
	if c.Time.IsZero() {
		return ErrZeroTime
	}
	if c.Low > c.High {
		return fmt.Errorf("%w: low=%v high=%v", ErrPriceRange, c.Low, c.High)
	}
	if c.Open < c.Low || c.Open > c.High {
		return fmt.Errorf("%w: open=%v low=%v high=%v", ErrPriceRange, c.Open, c.Low, c.High)
	}
	if c.Close < c.Low || c.Close > c.High {
		return fmt.Errorf("%w: close=%v low=%v high=%v", ErrPriceRange, c.Close, c.Low, c.High)
	}
	if c.Volume < 0 {
		return fmt.Errorf("%w: volume=%d", ErrNegativeVolume, c.Volume)
	}
	return nil
}

// ValidateSeries checks that timestamps are strictly increasing, which also
// rules out duplicates. Individual candles are assumed to be validated on
// ingestion.
func ValidateSeries(cs []Candle) error {
	for i := 1; i < len(cs); i++ {
		if !cs[i].Time.After(cs[i-1].Time) {
			return fmt.Errorf("%w: index %d (%s) after %s", ErrOutOfOrder,
				i, cs[i].Time.Format(time.RFC3339), cs[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
