package di

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"candle_backend/internal/feature/candles/domain/calendar"
	"candle_backend/internal/feature/candles/domain/window"
	"candle_backend/internal/feature/candles/usecase"
)

// ist is the market timezone (UTC+5:30). All window math happens here.
var ist = time.FixedZone("IST", 5*3600+30*60)

// MarketLocation returns the exchange's local timezone.
func MarketLocation() *time.Location { return ist }

// EngineSettings collects the candle engine knobs loaded from the environment.
type EngineSettings struct {
	BatchNo             int
	TotalBatches        int
	IntervalMinutes     int
	LatestWindowMinutes int
	MarketOpen          window.TimeOfDay
	MarketClose         window.TimeOfDay
	MaxWorkers          int
	RequestDeadline     time.Duration
	MaxLookbackDays     int
	HolidayFile         string
	Align               window.Align
}

// LoadEngineSettings reads the engine configuration from environment
// variables, applying the documented defaults.
func LoadEngineSettings() (EngineSettings, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	s := EngineSettings{
		BatchNo:             envInt("BATCH_NUM", 1),
		TotalBatches:        envInt("TOTAL_BATCHES", 2),
		IntervalMinutes:     envInt("INTERVAL_MINUTES", 3),
		LatestWindowMinutes: envInt("LATEST_WINDOW_MINUTES", 5),
		MaxWorkers:          envInt("MAX_WORKERS", 100),
		RequestDeadline:     time.Duration(envInt("REQUEST_DEADLINE_SECONDS", 20)) * time.Second,
		MaxLookbackDays:     envInt("MAX_LOOKBACK_DAYS", 10),
		HolidayFile:         os.Getenv("HOLIDAY_FILE"),
		Align:               window.Align(envStr("WINDOW_ALIGN", string(window.AlignFloor))),
	}

	var err error
	if s.MarketOpen, err = window.ParseTimeOfDay(envStr("MARKET_OPEN", "09:00")); err != nil {
		return EngineSettings{}, fmt.Errorf("MARKET_OPEN: %w", err)
	}
	if s.MarketClose, err = window.ParseTimeOfDay(envStr("MARKET_CLOSE", "15:30")); err != nil {
		return EngineSettings{}, fmt.Errorf("MARKET_CLOSE: %w", err)
	}
	return s, nil
}

// NewLiveCandles builds the calendar, planner and batch engine from settings.
// universe must already be ordered; it is treated as read-only.
func NewLiveCandles(market usecase.MarketRepository, universe []string, s EngineSettings) (*usecase.LiveCandlesUsecase, error) {
	holidays := calendar.DefaultHolidays()
	if s.HolidayFile != "" {
		loaded, err := calendar.LoadHolidays(s.HolidayFile)
		if err != nil {
			return nil, err
		}
		holidays = loaded
	}
	cal := calendar.New(holidays, s.MaxLookbackDays)

	planner, err := window.New(cal, window.Config{
		Open:                s.MarketOpen,
		Close:               s.MarketClose,
		IntervalMinutes:     s.IntervalMinutes,
		LatestWindowMinutes: s.LatestWindowMinutes,
		Align:               s.Align,
	})
	if err != nil {
		return nil, err
	}

	return usecase.NewLiveCandlesUsecase(market, planner, universe, usecase.EngineConfig{
		TotalBatches:    s.TotalBatches,
		MaxWorkers:      s.MaxWorkers,
		RequestDeadline: s.RequestDeadline,
		Now:             func() time.Time { return time.Now().In(ist) },
	}), nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}
