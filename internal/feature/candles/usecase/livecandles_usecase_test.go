package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"candle_backend/internal/feature/candles/adapters/groww"
	"candle_backend/internal/feature/candles/domain/calendar"
	"candle_backend/internal/feature/candles/domain/entity"
	"candle_backend/internal/feature/candles/domain/window"
	"candle_backend/internal/feature/candles/usecase"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

// mockMarket はMarketRepositoryインターフェースのモック実装です。
// 並行フェッチから呼ばれるため、呼び出し記録はミューテックスで保護します。
type mockMarket struct {
	FetchCandlesFunc func(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error)

	mu      sync.Mutex
	symbols []string
}

func (m *mockMarket) FetchCandles(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
	m.mu.Lock()
	m.symbols = append(m.symbols, symbol)
	m.mu.Unlock()
	if m.FetchCandlesFunc != nil {
		return m.FetchCandlesFunc(ctx, symbol, start, end, intervalMinutes)
	}
	return nil, errors.New("FetchCandlesFunc is not implemented")
}

func (m *mockMarket) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out
}

// newUsecase は固定時刻 2025-01-06(月) 13:46 IST のエンジンを組み立てます。
// Fullモードの窓は 09:00〜13:45 になります。
func newUsecase(t *testing.T, market usecase.MarketRepository, universe []string, cfg usecase.EngineConfig) *usecase.LiveCandlesUsecase {
	t.Helper()
	cal := calendar.New(calendar.DefaultHolidays(), 10)
	planner, err := window.New(cal, window.Config{
		Open:                window.TimeOfDay{Hour: 9, Minute: 0},
		Close:               window.TimeOfDay{Hour: 15, Minute: 30},
		IntervalMinutes:     3,
		LatestWindowMinutes: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Date(2025, 1, 6, 13, 46, 0, 0, ist) }
	}
	return usecase.NewLiveCandlesUsecase(market, planner, universe, cfg)
}

// candleAt は指定時刻の有効な1本を生成します。
func candleAt(at time.Time) entity.Candle {
	return entity.Candle{Time: at, Open: 100, High: 110, Low: 90, Close: 105, Volume: 1000}
}

func TestLiveCandlesUsecase_GetLiveCandles_Success(t *testing.T) {
	universe := []string{"AXISBANK", "INFY", "TCS"}

	market := &mockMarket{
		FetchCandlesFunc: func(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
			// 窓の内側2本に加え、窓の外（開始前と終了境界ちょうど）を混ぜる
			return []entity.Candle{
				candleAt(start.Add(-3 * time.Minute)),
				candleAt(start),
				candleAt(start.Add(3 * time.Minute)),
				candleAt(end),
			}, nil
		},
	}

	uc := newUsecase(t, market, universe, usecase.EngineConfig{TotalBatches: 1, MaxWorkers: 4})
	res, err := uc.GetLiveCandles(context.Background(), window.ModeFull, time.Time{}, 1)

	assert.NoError(t, err)
	assert.Equal(t, window.ModeFull, res.Mode)
	assert.Equal(t, 1, res.BatchNo)
	assert.Equal(t, 1, res.TotalBatches)
	assert.Equal(t, "2025-01-06", res.EffectiveDate.Format(calendar.DateLayout))
	assert.False(t, res.IsFallback)
	assert.Equal(t, 3, res.IntervalMinutes)
	assert.Equal(t, "09:00", res.Start.Format("15:04"))
	assert.Equal(t, "13:45", res.End.Format("15:04"))

	assert.Equal(t, 3, res.Count())
	assert.Empty(t, res.Failed)
	for _, sym := range universe {
		// [Start, End) の外にある2本はトリムされる
		assert.Len(t, res.Data[sym], 2, sym)
	}
	assert.ElementsMatch(t, universe, market.called())
}

// 1銘柄の失敗は他の銘柄に影響せず、Failedに分類付きで隔離されます。
func TestLiveCandlesUsecase_GetLiveCandles_FailureIsolation(t *testing.T) {
	universe := []string{"AXISBANK", "INFY", "TCS", "SBIN"}

	market := &mockMarket{
		FetchCandlesFunc: func(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
			switch symbol {
			case "INFY":
				return nil, &groww.FetchError{Kind: groww.KindHTTP, Symbol: symbol, Status: 500, Err: errors.New("bad gateway")}
			case "TCS":
				return nil, context.DeadlineExceeded
			default:
				return []entity.Candle{candleAt(start)}, nil
			}
		},
	}

	uc := newUsecase(t, market, universe, usecase.EngineConfig{TotalBatches: 1, MaxWorkers: 2})
	res, err := uc.GetLiveCandles(context.Background(), window.ModeFull, time.Time{}, 1)

	assert.NoError(t, err)
	// 完全性: 全銘柄がDataとFailedのどちらかにちょうど1回現れる
	assert.Equal(t, len(universe), len(res.Data)+len(res.Failed))
	assert.Equal(t, 2, res.Count())
	assert.Equal(t, "http_error", res.Failed["INFY"])
	assert.Equal(t, "timeout", res.Failed["TCS"])
	assert.Contains(t, res.Data, "AXISBANK")
	assert.Contains(t, res.Data, "SBIN")
}

// トリム後に1本も残らない銘柄はemptyとして報告されます。
func TestLiveCandlesUsecase_GetLiveCandles_EmptyAfterTrim(t *testing.T) {
	market := &mockMarket{
		FetchCandlesFunc: func(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
			return []entity.Candle{candleAt(end.Add(3 * time.Minute))}, nil
		},
	}

	uc := newUsecase(t, market, []string{"AXISBANK"}, usecase.EngineConfig{TotalBatches: 1})
	res, err := uc.GetLiveCandles(context.Background(), window.ModeFull, time.Time{}, 1)

	assert.NoError(t, err)
	assert.Equal(t, 0, res.Count())
	assert.Equal(t, "empty", res.Failed["AXISBANK"])
}

// バッチ番号で選択された銘柄だけがフェッチされます。
func TestLiveCandlesUsecase_GetLiveCandles_BatchSelection(t *testing.T) {
	universe := []string{"A", "B", "C", "D", "E"}

	market := &mockMarket{
		FetchCandlesFunc: func(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
			return []entity.Candle{candleAt(start)}, nil
		},
	}

	uc := newUsecase(t, market, universe, usecase.EngineConfig{TotalBatches: 2, MaxWorkers: 2})
	res, err := uc.GetLiveCandles(context.Background(), window.ModeFull, time.Time{}, 2)

	assert.NoError(t, err)
	assert.Equal(t, 2, res.BatchNo)
	assert.Equal(t, 2, res.TotalBatches)
	// ceil(5/2)=3 なので2番目のバッチは D, E
	assert.ElementsMatch(t, []string{"D", "E"}, market.called())
	assert.Equal(t, 2, res.Count())
}

func TestLiveCandlesUsecase_GetLiveCandles_InvalidBatch(t *testing.T) {
	market := &mockMarket{}
	uc := newUsecase(t, market, []string{"A"}, usecase.EngineConfig{TotalBatches: 2})

	_, err := uc.GetLiveCandles(context.Background(), window.ModeFull, time.Time{}, 3)
	assert.ErrorIs(t, err, usecase.ErrInvalidBatch)
	assert.Empty(t, market.called())
}

// 休日を指定するとフォールバックがResultに伝播します。
func TestLiveCandlesUsecase_GetLiveCandles_HolidayFallback(t *testing.T) {
	market := &mockMarket{
		FetchCandlesFunc: func(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
			return []entity.Candle{candleAt(start)}, nil
		},
	}

	uc := newUsecase(t, market, []string{"AXISBANK"}, usecase.EngineConfig{TotalBatches: 1})
	requested := time.Date(2024, 12, 25, 0, 0, 0, 0, ist)
	res, err := uc.GetLiveCandles(context.Background(), window.ModeFull, requested, 1)

	assert.NoError(t, err)
	assert.True(t, res.IsFallback)
	assert.Equal(t, "2024-12-25", res.FetchedDate.Format(calendar.DateLayout))
	assert.Equal(t, "2024-12-24", res.EffectiveDate.Format(calendar.DateLayout))
	// 過去日のFullモードはセッション全体
	assert.Equal(t, "09:00", res.Start.Format("15:04"))
	assert.Equal(t, "15:30", res.End.Format("15:04"))
}
