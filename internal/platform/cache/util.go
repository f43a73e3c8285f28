package cache

import (
	"strings"
	"time"
)

// safe normalizes a key fragment so it cannot break the key layout.
func safe(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// TimeUntilNextBoundary returns the duration until the next interval grid
// boundary after now. Used as a cache TTL so entries expire exactly when a
// new candle can exist.
func TimeUntilNextBoundary(now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return time.Minute
	}
	next := now.Truncate(interval).Add(interval)
	return next.Sub(now)
}
