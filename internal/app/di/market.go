// Package di provides dependency injection factories for creating application components.
package di

import (
	"os"
	"strconv"
	"time"

	"candle_backend/internal/feature/candles/adapters/groww"
	infrahttp "candle_backend/internal/platform/http"
	"candle_backend/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured GrowwMarket with HTTP client and an
// optional per-minute rate limiter (GROWW_RATE_LIMIT, 0 disables it).
func NewMarket(maxWorkers int) *groww.GrowwMarket {
	cfg := groww.LoadConfig()

	// The overall client timeout stays above the per-attempt timeout so the
	// adapter's own deadline fires first.
	httpClient := infrahttp.NewHTTPClient(cfg.AttemptTimeout+5*time.Second, maxWorkers)

	var limiter ratelimiter.RateLimiterInterface
	if n, _ := strconv.Atoi(os.Getenv("GROWW_RATE_LIMIT")); n > 0 {
		limiter = ratelimiter.New(n, time.Minute)
	}

	return groww.New(cfg, httpClient, limiter)
}
