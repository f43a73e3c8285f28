// Package window computes concrete intraday fetch windows for full-day and
// latest-tail candle requests.
package window

import (
	"errors"
	"fmt"
	"time"

	"candle_backend/internal/feature/candles/domain/calendar"
)

// Mode selects between a whole trading day and a short trailing window.
type Mode string

const (
	ModeFull   Mode = "full"
	ModeLatest Mode = "latest"
)

// Align controls how the latest-mode window end snaps to the interval grid.
type Align string

const (
	AlignFloor   Align = "floor"   // last fully elapsed boundary (default)
	AlignNearest Align = "nearest" // closest boundary, may include the running interval
)

// ErrInvalidWindow reports structurally impossible window parameters.
var ErrInvalidWindow = errors.New("invalid window parameters")

// TimeOfDay is a wall-clock instant within a trading day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On anchors the time of day to the calendar date of d, keeping d's location.
func (td TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), td.Hour, td.Minute, 0, 0, d.Location())
}

// Window is the planned fetch range for one request. Start and End carry the
// market's local timezone; both lie on the interval grid anchored at market
// open.
type Window struct {
	Mode            Mode
	RequestedDate   time.Time
	EffectiveDate   time.Time
	IsFallback      bool
	Start           time.Time
	End             time.Time
	IntervalMinutes int
}

// ExpectedCount is the number of whole interval buckets the window spans.
func (w Window) ExpectedCount() int {
	if w.IntervalMinutes <= 0 {
		return 0
	}
	return int(w.End.Sub(w.Start) / (time.Duration(w.IntervalMinutes) * time.Minute))
}

// Planner derives fetch windows from market session boundaries and the
// trading calendar. It holds no per-request state.
type Planner struct {
	cal                 *calendar.Calendar
	open                TimeOfDay
	close               TimeOfDay
	intervalMinutes     int
	latestWindowMinutes int
	align               Align
}

// Config collects the session parameters for a Planner.
type Config struct {
	Open                TimeOfDay
	Close               TimeOfDay
	IntervalMinutes     int
	LatestWindowMinutes int
	Align               Align
}

// New validates cfg and builds a Planner.
func New(cal *calendar.Calendar, cfg Config) (*Planner, error) {
	if cfg.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: interval_minutes=%d", ErrInvalidWindow, cfg.IntervalMinutes)
	}
	if cfg.LatestWindowMinutes < cfg.IntervalMinutes {
		return nil, fmt.Errorf("%w: latest_window_minutes=%d < interval_minutes=%d",
			ErrInvalidWindow, cfg.LatestWindowMinutes, cfg.IntervalMinutes)
	}
	openMin := cfg.Open.Hour*60 + cfg.Open.Minute
	closeMin := cfg.Close.Hour*60 + cfg.Close.Minute
	if openMin >= closeMin {
		return nil, fmt.Errorf("%w: market open %02d:%02d is not before close %02d:%02d",
			ErrInvalidWindow, cfg.Open.Hour, cfg.Open.Minute, cfg.Close.Hour, cfg.Close.Minute)
	}
	align := cfg.Align
	if align == "" {
		align = AlignFloor
	}
	return &Planner{
		cal:                 cal,
		open:                cfg.Open,
		close:               cfg.Close,
		intervalMinutes:     cfg.IntervalMinutes,
		latestWindowMinutes: cfg.LatestWindowMinutes,
		align:               align,
	}, nil
}

func (p *Planner) interval() time.Duration {
	return time.Duration(p.intervalMinutes) * time.Minute
}

// floorToGrid snaps t down to the interval grid anchored at open. Times before
// open snap to open itself.
func (p *Planner) floorToGrid(open, t time.Time) time.Time {
	if !t.After(open) {
		return open
	}
	return open.Add(t.Sub(open) / p.interval() * p.interval())
}

// snapToGrid applies the configured alignment policy.
func (p *Planner) snapToGrid(open, t time.Time) time.Time {
	if p.align == AlignNearest {
		return p.floorToGrid(open, t.Add(p.interval()/2))
	}
	return p.floorToGrid(open, t)
}

// Plan resolves requested against the trading calendar and computes the fetch
// window for mode. now must be sampled once per request in the market's
// timezone; a zero requested date means "today".
func (p *Planner) Plan(mode Mode, requested time.Time, now time.Time) (Window, error) {
	if requested.IsZero() {
		requested = now
	}
	effective, isFallback, err := p.cal.Resolve(requested)
	if err != nil {
		return Window{}, err
	}

	open := p.open.On(effective)
	closeAt := p.close.On(effective)
	isToday := effective.Year() == now.Year() && effective.YearDay() == now.YearDay()

	w := Window{
		Mode:            mode,
		RequestedDate:   requested,
		EffectiveDate:   effective,
		IsFallback:      isFallback,
		IntervalMinutes: p.intervalMinutes,
	}

	switch mode {
	case ModeFull:
		// Whole session, truncated to the last elapsed boundary when the
		// session is still running.
		cap := closeAt
		if isToday && now.Before(closeAt) {
			cap = now
		}
		w.Start = open
		w.End = p.floorToGrid(open, cap)

	case ModeLatest:
		n := (p.latestWindowMinutes + p.intervalMinutes - 1) / p.intervalMinutes
		end := p.snapToGrid(open, now)
		if !isToday || end.After(closeAt) {
			// Past dates and post-close requests anchor to the final boundary.
			end = p.floorToGrid(open, closeAt)
		}
		if !end.After(open) {
			// Before the first boundary the window degenerates to the first
			// interval of the day.
			end = open.Add(p.interval())
		}
		start := end.Add(-time.Duration(n) * p.interval())
		if start.Before(open) {
			start = open
		}
		w.Start = start
		w.End = end

	default:
		return Window{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidWindow, mode)
	}

	return w, nil
}
