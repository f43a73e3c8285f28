// Package ratelimiter は外部APIへのリクエスト頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は一定期間あたりの呼び出し回数を制限します。
// 複数のゴルーチンから同時に呼ばれるため、内部状態はミューテックスで保護します。
type RateLimiter struct {
	limit    int           // interval あたりの上限
	interval time.Duration // どの単位でリセットするか

	mu        sync.Mutex
	count     int
	lastReset time.Time
}

// New は新しいRateLimiterのインスタンスを生成します。
func New(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// Wait はレートリミットの上限に達している場合、次の期間まで待機します。
// 待機中にコンテキストがキャンセルされた場合はそのエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	// interval を過ぎたらカウントをリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		rl.mu.Unlock()
		return nil
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	// リセット時刻はスリープ明けの想定時刻に合わせる
	rl.count = 1
	rl.lastReset = now.Add(sleep)
	rl.mu.Unlock()

	if sleep <= 0 {
		return nil
	}
	slog.Warn("rate limit hit, waiting", "limit", rl.limit, "sleep", sleep)
	select {
	case <-time.After(sleep):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
