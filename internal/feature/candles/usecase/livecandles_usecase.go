// Package usecase はローソク足取得エンジンのビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"candle_backend/internal/feature/candles/domain/entity"
	"candle_backend/internal/feature/candles/domain/window"
)

// MarketRepository は上流プロバイダーからローソク足を取得するリポジトリの
// インターフェイスです。外部APIの実装を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	FetchCandles(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error)
}

// EngineConfig はバッチ処理の並行度とタイムアウトの設定です。
type EngineConfig struct {
	TotalBatches    int
	MaxWorkers      int           // バッチ内の同時フェッチ数の上限
	RequestDeadline time.Duration // リクエスト全体の壁時計バジェット
	Now             func() time.Time
}

// Result は1バッチ分の取得結果です。DataとFailedを合わせると、要求した
// バッチの全銘柄がちょうど1回ずつ現れます（完全性の不変条件）。
type Result struct {
	Mode            window.Mode
	BatchNo         int
	TotalBatches    int
	FetchedDate     time.Time
	EffectiveDate   time.Time
	IsFallback      bool
	IntervalMinutes int
	Start           time.Time
	End             time.Time
	Data            map[string][]entity.Candle
	Failed          map[string]string
}

// Count は取得に成功した銘柄数を返します。
func (r *Result) Count() int { return len(r.Data) }

// LiveCandlesUsecase はバッチ選択・時間窓の計算・並行フェッチ・集約を
// 編成するユースケースです。ユニバースは起動時に注入され読み取り専用です。
type LiveCandlesUsecase struct {
	market       MarketRepository
	planner      *window.Planner
	universe     []string
	totalBatches int
	maxWorkers   int
	deadline     time.Duration
	now          func() time.Time
}

// NewLiveCandlesUsecase はLiveCandlesUsecaseの新しいインスタンスを生成します。
func NewLiveCandlesUsecase(market MarketRepository, planner *window.Planner, universe []string, cfg EngineConfig) *LiveCandlesUsecase {
	if cfg.TotalBatches < 1 {
		cfg.TotalBatches = 1
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
	return &LiveCandlesUsecase{
		market:       market,
		planner:      planner,
		universe:     universe,
		totalBatches: cfg.TotalBatches,
		maxWorkers:   cfg.MaxWorkers,
		deadline:     cfg.RequestDeadline,
		now:          cfg.Now,
	}
}

// outcome は1銘柄の取得結果です。スライスの自スロットにのみ書き込むため、
// ロックは不要です。
type outcome struct {
	candles []entity.Candle
	err     error
}

// GetLiveCandles は指定バッチの全銘柄のローソク足を並行して取得します。
// requestedが ゼロ値の場合は当日扱いです。銘柄単位の失敗はResult.Failedに
// 閉じ込め、リクエスト全体のエラーには昇格させません。
func (u *LiveCandlesUsecase) GetLiveCandles(ctx context.Context, mode window.Mode, requested time.Time, batchNo int) (*Result, error) {
	// 現在時刻はリクエストにつき1回だけサンプリングする
	now := u.now()

	win, err := u.planner.Plan(mode, requested, now)
	if err != nil {
		return nil, err
	}

	batch, err := partition(u.universe, batchNo, u.totalBatches)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, u.deadline)
	defer cancel()

	// 銘柄ごとに1スロット。各タスクは自分のスロットだけを書く。
	outcomes := make([]outcome, len(batch))

	// 1銘柄の失敗が他をキャンセルしないよう、ワーカーはエラーを返さない。
	var g errgroup.Group
	g.SetLimit(u.maxWorkers)
	for i, sym := range batch {
		g.Go(func() error {
			cs, err := u.market.FetchCandles(ctx, sym, win.Start, win.End, win.IntervalMinutes)
			outcomes[i] = outcome{candles: cs, err: err}
			return nil
		})
	}
	// 集約前に全タスクの完了を待つ
	_ = g.Wait()

	res := &Result{
		Mode:            win.Mode,
		BatchNo:         batchNo,
		TotalBatches:    u.totalBatches,
		FetchedDate:     win.RequestedDate,
		EffectiveDate:   win.EffectiveDate,
		IsFallback:      win.IsFallback,
		IntervalMinutes: win.IntervalMinutes,
		Start:           win.Start,
		End:             win.End,
		Data:            make(map[string][]entity.Candle, len(batch)),
		Failed:          make(map[string]string),
	}

	for i, sym := range batch {
		if err := outcomes[i].err; err != nil {
			res.Failed[sym] = classifyFailure(err)
			slog.Warn("symbol fetch failed", "symbol", sym, "reason", res.Failed[sym], "error", err)
			continue
		}
		cs := trimToWindow(outcomes[i].candles, win)
		if len(cs) == 0 {
			res.Failed[sym] = "empty"
			continue
		}
		res.Data[sym] = cs
	}

	return res, nil
}

// Universe は注入された銘柄ユニバースを返します（読み取り専用）。
func (u *LiveCandlesUsecase) Universe() []string { return u.universe }

// trimToWindow は [win.Start, win.End) に開始時刻が収まるローソク足だけを
// 残します。走行中の未確定バケットはここで落ちます。
func trimToWindow(cs []entity.Candle, win window.Window) []entity.Candle {
	out := make([]entity.Candle, 0, len(cs))
	for _, c := range cs {
		if c.Time.Before(win.Start) || !c.Time.Before(win.End) {
			continue
		}
		out = append(out, c)
	}
	return out
}
