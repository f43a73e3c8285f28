// Package retry は上限付きリトライのヘルパーを提供します。
package retry

import (
	"context"
	"time"
)

// Retryer は固定回数・上限付きバックオフでリトライを実行します。
// 攻撃的な指数バックオフは不要なため、短い遅延に上限を設けています。
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// New は新しいRetryerを生成します。maxAttemptsは総試行回数（1以上）です。
func New(maxAttempts int, baseDelay, maxDelay time.Duration) *Retryer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retryer{maxAttempts: maxAttempts, baseDelay: baseDelay, maxDelay: maxDelay}
}

// Do はfnを最大maxAttempts回実行します。fnがretryable=falseを返すか、
// コンテキストがキャンセルされた時点で打ち切ります。
func (r *Retryer) Do(ctx context.Context, fn func(attempt int) (retryable bool, err error)) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		retryable, err := fn(attempt)
		if err == nil || !retryable {
			return err
		}
		lastErr = err

		if attempt < r.maxAttempts {
			select {
			case <-time.After(r.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

func (r *Retryer) backoff(attempt int) time.Duration {
	delay := r.baseDelay * (1 << (attempt - 1))
	if r.maxDelay > 0 && delay > r.maxDelay {
		return r.maxDelay
	}
	return delay
}
