// Package usecase はトレードシグナルの検証ロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	candleentity "candle_backend/internal/feature/candles/domain/entity"
	"candle_backend/internal/feature/signals/domain/entity"
)

// SignalRepository はシグナル配信サービスを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SignalRepository interface {
	FetchSignals(ctx context.Context) ([]entity.Signal, error)
}

// MarketRepository はシグナル銘柄のローソク足取得を抽象化します。
type MarketRepository interface {
	FetchCandles(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]candleentity.Candle, error)
}

// Config はシグナル検証の取得パラメータです。
type Config struct {
	LookbackMinutes int // 現在時刻から遡るローソク足の取得範囲
	IntervalMinutes int
	MaxWorkers      int
	RequestDeadline time.Duration
	Now             func() time.Time
}

// Summary はシグナル検証の集計カウンターです。
type Summary struct {
	Entered     int `json:"entered"`
	TargetHit   int `json:"target_hit"`
	StoplossHit int `json:"stoploss_hit"`
	NotEntered  int `json:"not_entered"`
}

// SignalOutcome は1シグナルの検証結果です。
type SignalOutcome struct {
	Signal   entity.Signal
	Analysis entity.TradeAnalysis
}

// Result はシグナル検証全体の結果です。
type Result struct {
	Data    map[string]SignalOutcome
	Summary Summary
	Elapsed time.Duration
}

// AnalyzeUsecase はシグナル一覧の取得、銘柄ごとの並行ローソク足フェッチ、
// エントリー/ターゲット/ストップロスのシミュレーションを編成します。
type AnalyzeUsecase struct {
	signals SignalRepository
	market  MarketRepository
	cfg     Config
}

// NewAnalyzeUsecase はAnalyzeUsecaseの新しいインスタンスを生成します。
func NewAnalyzeUsecase(signals SignalRepository, market MarketRepository, cfg Config) *AnalyzeUsecase {
	if cfg.LookbackMinutes <= 0 {
		cfg.LookbackMinutes = 45
	}
	if cfg.IntervalMinutes <= 0 {
		cfg.IntervalMinutes = 3
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.RequestDeadline <= 0 {
		cfg.RequestDeadline = 20 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AnalyzeUsecase{signals: signals, market: market, cfg: cfg}
}

// AnalyzeAll は全シグナルを直近のローソク足に対して検証します。
// 銘柄単位のフェッチ失敗はシグナル未執行（NOT_ENTERED）として扱い、
// リクエスト全体は失敗させません。
func (u *AnalyzeUsecase) AnalyzeAll(ctx context.Context) (*Result, error) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, u.cfg.RequestDeadline)
	defer cancel()

	signals, err := u.signals.FetchSignals(ctx)
	if err != nil {
		return nil, err
	}

	now := u.cfg.Now()
	start := now.Add(-time.Duration(u.cfg.LookbackMinutes) * time.Minute)

	series := make([][]candleentity.Candle, len(signals))
	var g errgroup.Group
	g.SetLimit(u.cfg.MaxWorkers)
	for i, sig := range signals {
		g.Go(func() error {
			cs, err := u.market.FetchCandles(ctx, sig.Symbol, start, now, u.cfg.IntervalMinutes)
			if err != nil {
				slog.Warn("signal candle fetch failed", "symbol", sig.Symbol, "error", err)
				return nil
			}
			series[i] = cs
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Data: make(map[string]SignalOutcome, len(signals))}
	for i, sig := range signals {
		analysis := analyzeTrade(series[i], sig)
		switch analysis.Status {
		case entity.StatusExitedTarget:
			res.Summary.Entered++
			res.Summary.TargetHit++
		case entity.StatusExitedSL:
			res.Summary.Entered++
			res.Summary.StoplossHit++
		case entity.StatusEntered:
			res.Summary.Entered++
		default:
			res.Summary.NotEntered++
		}
		res.Data[sig.Symbol] = SignalOutcome{Signal: sig, Analysis: analysis}
	}

	res.Elapsed = time.Since(started)
	return res, nil
}

// analyzeTrade はローソク足の高値・安値に対してシグナルを順に再生します。
// 高値がエントリー価格に達した足で執行し、その後ターゲット到達を
// ストップロスより先に判定します（同一足では利確を優先）。
func analyzeTrade(candles []candleentity.Candle, sig entity.Signal) entity.TradeAnalysis {
	var (
		entered   bool
		entryTime time.Time
	)

	for _, c := range candles {
		if !entered && c.High >= sig.Entry {
			entered = true
			entryTime = c.Time
		}
		if !entered {
			continue
		}

		if c.High >= sig.Target {
			pnl := round2((sig.Target - sig.Entry) * sig.Qty)
			exit := c.Time
			return entity.TradeAnalysis{
				Status:    entity.StatusExitedTarget,
				EntryTime: &entryTime,
				ExitTime:  &exit,
				ExitLTP:   &sig.Target,
				PnL:       &pnl,
			}
		}
		if c.Low <= sig.Stoploss {
			pnl := round2((sig.Stoploss - sig.Entry) * sig.Qty)
			exit := c.Time
			return entity.TradeAnalysis{
				Status:    entity.StatusExitedSL,
				EntryTime: &entryTime,
				ExitTime:  &exit,
				ExitLTP:   &sig.Stoploss,
				PnL:       &pnl,
			}
		}
	}

	if entered {
		return entity.TradeAnalysis{Status: entity.StatusEntered, EntryTime: &entryTime}
	}
	return entity.TradeAnalysis{Status: entity.StatusNotEntered}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
