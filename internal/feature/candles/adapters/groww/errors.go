package groww

import "fmt"

// FetchKind classifies a per-symbol fetch failure.
type FetchKind string

const (
	KindTimeout FetchKind = "timeout"
	KindHTTP    FetchKind = "http_error"
	KindParse   FetchKind = "parse_error"
	KindEmpty   FetchKind = "empty"
)

// FetchError is the failure outcome of one symbol's candle fetch. It wraps
// the underlying cause and carries the HTTP status when one was received.
type FetchError struct {
	Kind   FetchKind
	Symbol string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (http %d): %v", e.Symbol, e.Kind, e.Status, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Symbol, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Symbol, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FailureKind reports the classification consumed by the batch aggregator.
func (e *FetchError) FailureKind() string { return string(e.Kind) }

// Retryable reports whether another attempt may succeed: timeouts and
// transient HTTP failures (5xx or no response at all). Client errors, parse
// failures and empty series fail fast.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindTimeout:
		return true
	case KindHTTP:
		return e.Status == 0 || e.Status >= 500
	default:
		return false
	}
}
