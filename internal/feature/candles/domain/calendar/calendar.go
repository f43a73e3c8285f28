// Package calendar resolves requested dates to actual NSE trading days,
// falling back past weekends and exchange holidays.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// DefaultMaxLookbackDays bounds the walk-back so a misconfigured holiday set
// can never loop forever.
const DefaultMaxLookbackDays = 10

// ErrResolutionExceeded is returned when no trading day exists within the
// configured look-back window.
var ErrResolutionExceeded = errors.New("no trading day found within look-back window")

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Calendar answers "what was the most recent trading day?" questions from a
// static holiday set. It performs no I/O after construction and is safe for
// concurrent use.
type Calendar struct {
	holidays        map[string]struct{}
	maxLookbackDays int
}

// New creates a Calendar from a set of holiday dates (formatted YYYY-MM-DD).
// maxLookbackDays <= 0 selects DefaultMaxLookbackDays.
func New(holidays []string, maxLookbackDays int) *Calendar {
	if maxLookbackDays <= 0 {
		maxLookbackDays = DefaultMaxLookbackDays
	}
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h] = struct{}{}
	}
	return &Calendar{holidays: set, maxLookbackDays: maxLookbackDays}
}

// LoadHolidays reads a JSON array of YYYY-MM-DD strings from path.
// Each entry is validated so a malformed file fails at startup, not at
// resolution time.
func LoadHolidays(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holiday file: %w", err)
	}
	var days []string
	if err := json.Unmarshal(b, &days); err != nil {
		return nil, fmt.Errorf("parse holiday file %s: %w", path, err)
	}
	for _, d := range days {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return nil, fmt.Errorf("holiday %q is not YYYY-MM-DD: %w", d, err)
		}
	}
	return days, nil
}

// DefaultHolidays returns the built-in NSE trading holiday list used when no
// holiday file is configured.
func DefaultHolidays() []string {
	return []string{
		// 2024
		"2024-01-26", "2024-03-08", "2024-03-25", "2024-03-29",
		"2024-04-11", "2024-04-17", "2024-05-01", "2024-05-20",
		"2024-06-17", "2024-07-17", "2024-08-15", "2024-10-02",
		"2024-11-01", "2024-11-15", "2024-12-25",
		// 2025
		"2025-02-26", "2025-03-14", "2025-03-31", "2025-04-10",
		"2025-04-14", "2025-04-18", "2025-05-01", "2025-08-15",
		"2025-08-27", "2025-10-02", "2025-10-21", "2025-10-22",
		"2025-11-05", "2025-12-25",
	}
}

// IsTradingDay reports whether d is neither a weekend nor a listed holiday.
// Only the calendar date of d is considered.
func (c *Calendar) IsTradingDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[d.Format(DateLayout)]
	return !holiday
}

// Resolve returns the most recent trading day on or before requested.
// isFallback is true when the returned date differs from the requested one.
// The walk-back is bounded; exceeding it returns ErrResolutionExceeded.
func (c *Calendar) Resolve(requested time.Time) (effective time.Time, isFallback bool, err error) {
	d := requested
	for i := 0; i <= c.maxLookbackDays; i++ {
		if c.IsTradingDay(d) {
			return d, i > 0, nil
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Time{}, false, fmt.Errorf("%w: requested %s, looked back %d days",
		ErrResolutionExceeded, requested.Format(DateLayout), c.maxLookbackDays)
}
