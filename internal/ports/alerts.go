package ports

import "context"

// AlertSink receives operator-facing failure reports. Callers are expected
// to consult a throttle limiter before invoking it so the sink is not
// flooded by repeated identical failures.
type AlertSink interface {
	// Error reports a failure message with structured context data.
	Error(ctx context.Context, msg string, data map[string]interface{})
	// Exception reports an unexpected error.
	Exception(ctx context.Context, err error)
}

// Limiter is an atomic consume-and-report rate limiter for one key.
type Limiter interface {
	// Consume takes one attempt and reports whether it was accepted within
	// the current window.
	Consume() bool
}

// LimiterFactory hands out limiters bound to identifying keys. Limiters for
// the same key share state; limiters for different keys never interfere.
type LimiterFactory interface {
	// Create returns the limiter for the given key.
	Create(key string) Limiter
}
