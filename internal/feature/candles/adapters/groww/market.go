// Package groww はGroww charting APIからローソク足データを取得するアダプターです。
package groww

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"candle_backend/internal/feature/candles/adapters/groww/dto"
	"candle_backend/internal/feature/candles/domain/entity"
	"candle_backend/internal/feature/candles/usecase"
	"candle_backend/internal/shared/ratelimiter"
	"candle_backend/internal/shared/retry"
)

// GrowwMarket はGroww charting APIのMarketRepository実装です。
// リトライとレートリミットを内包し、呼び出し間で状態を持ちません。
type GrowwMarket struct {
	cfg     Config
	client  *http.Client
	retryer *retry.Retryer
	limiter ratelimiter.RateLimiterInterface
}

// GrowwMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*GrowwMarket)(nil)

// New は指定された設定とHTTPクライアントでGrowwMarketの新しいインスタンスを生成します。
// limiter はnil可（レートリミットなし）です。
func New(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *GrowwMarket {
	return &GrowwMarket{
		cfg:     cfg,
		client:  client,
		retryer: retry.New(cfg.MaxAttempts, cfg.RetryBaseDelay, cfg.RetryMaxDelay),
		limiter: limiter,
	}
}

// FetchCandles は1銘柄・1時間窓のローソク足を取得します。
// タイムアウトと一時的なHTTPエラーのみリトライし、4xxやパース失敗は即座に
// 打ち切ります。
func (g *GrowwMarket) FetchCandles(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
	var out []entity.Candle

	err := g.retryer.Do(ctx, func(attempt int) (bool, error) {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return false, err
			}
		}

		cs, err := g.fetchOnce(ctx, symbol, start, end, intervalMinutes)
		if err != nil {
			var fe *FetchError
			if errors.As(err, &fe) && fe.Retryable() {
				slog.Warn("candle fetch failed, retrying",
					"symbol", symbol, "attempt", attempt, "kind", fe.Kind, "error", err)
				return true, err
			}
			return false, err
		}
		out = cs
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// fetchOnce は1回の試行を実行します。試行ごとに独立したタイムアウトを張ります。
func (g *GrowwMarket) fetchOnce(ctx context.Context, symbol string, start, end time.Time, intervalMinutes int) ([]entity.Candle, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.AttemptTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("intervalInMinutes", strconv.Itoa(intervalMinutes))
	q.Set("startTimeInMillis", strconv.FormatInt(start.UnixMilli(), 10))
	q.Set("endTimeInMillis", strconv.FormatInt(end.UnixMilli(), 10))
	u := fmt.Sprintf("%s/%s?%s", g.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindParse, Symbol: symbol, Err: err}
	}
	// Growwのチャートサービスが要求するヘッダー
	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("x-app-id", "growwWeb")
	req.Header.Set("x-platform", "web")
	req.Header.Set("x-device-type", "charts")

	res, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
			return nil, &FetchError{Kind: KindTimeout, Symbol: symbol, Err: err}
		}
		return nil, &FetchError{Kind: KindHTTP, Symbol: symbol, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "symbol", symbol, "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Kind: KindHTTP, Symbol: symbol, Status: res.StatusCode,
			Err: fmt.Errorf("groww http %d", res.StatusCode),
		}
	}

	var body dto.ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, &FetchError{Kind: KindParse, Symbol: symbol, Err: err}
	}

	candles := g.normalize(symbol, body.Candles)
	if len(candles) == 0 {
		return nil, &FetchError{Kind: KindEmpty, Symbol: symbol}
	}
	return candles, nil
}

// normalize は生のタプル列をドメインエンティティに変換します。
// 不変条件に違反するレコードはフェッチ全体を失敗させず、警告ログとともに
// 捨てます（部分許容ポリシー）。
func (g *GrowwMarket) normalize(symbol string, raw [][]json.Number) []entity.Candle {
	candles := make([]entity.Candle, 0, len(raw))
	for i, tuple := range raw {
		c, err := parseTuple(tuple)
		if err != nil {
			slog.Warn("dropping malformed candle", "symbol", symbol, "index", i, "error", err)
			continue
		}
		if err := c.Validate(); err != nil {
			slog.Warn("dropping invalid candle", "symbol", symbol, "index", i, "error", err)
			continue
		}
		candles = append(candles, c)
	}

	// 昇順を保証し、重複タイムスタンプは先勝ちで捨てる
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	dedup := candles[:0]
	for i, c := range candles {
		if i > 0 && !c.Time.After(dedup[len(dedup)-1].Time) {
			slog.Warn("dropping duplicate candle timestamp", "symbol", symbol, "time", c.Time)
			continue
		}
		dedup = append(dedup, c)
	}
	return dedup
}

// parseTuple は [timestamp, open, high, low, close, volume] 配列を1本の
// ローソク足に変換します。timestampはUTC秒として解釈します。
func parseTuple(tuple []json.Number) (entity.Candle, error) {
	if len(tuple) != 6 {
		return entity.Candle{}, fmt.Errorf("expected 6 fields, got %d", len(tuple))
	}
	ts, err := tuple[0].Int64()
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse timestamp %q: %w", tuple[0], err)
	}
	var prices [4]float64
	for i := 1; i <= 4; i++ {
		v, err := tuple[i].Float64()
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse price %q: %w", tuple[i], err)
		}
		prices[i-1] = v
	}
	vol, err := tuple[5].Float64()
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse volume %q: %w", tuple[5], err)
	}

	return entity.Candle{
		Time:   time.Unix(ts, 0).UTC(),
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: int64(vol),
	}, nil
}
