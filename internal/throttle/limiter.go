// Package throttle implements a keyed fixed-window rate limiter used to
// suppress repeated identical failure reports. It is the only cross-cycle
// shared state the check pipeline relies on.
package throttle

import (
	"sync"
	"time"

	"hedgeguard/internal/ports"
)

// Config holds the window parameters shared by every key of one factory.
type Config struct {
	// Period is the length of the accept window.
	Period time.Duration
	// MaxAttempts is the number of accepts allowed per key per window.
	MaxAttempts int
}

// Factory hands out limiters bound to identifying keys. All limiters from
// one factory share the same window parameters; state is kept per key.
// Safe for concurrent use.
type Factory struct {
	cfg Config
	now func() time.Time // injectable clock for tests

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start    time.Time
	consumed int
}

// NewFactory creates a limiter factory. A non-positive period defaults to
// one minute, a non-positive attempt budget to one accept per window.
func NewFactory(cfg Config) *Factory {
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Factory{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock replaces the factory's clock. Intended for tests.
func (f *Factory) WithClock(now func() time.Time) *Factory {
	f.now = now
	return f
}

// Create returns the limiter for the given key. Limiters for the same key
// share one window; limiters for different keys never interfere.
// Implements ports.LimiterFactory.
func (f *Factory) Create(key string) ports.Limiter {
	return &KeyedLimiter{factory: f, key: key}
}

// consume atomically takes one attempt for a key and reports whether it was
// accepted within the current window.
func (f *Factory) consume(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	w, ok := f.windows[key]
	if !ok || now.Sub(w.start) >= f.cfg.Period {
		w = &window{start: now}
		f.windows[key] = w
	}
	if w.consumed >= f.cfg.MaxAttempts {
		return false
	}
	w.consumed++
	return true
}

// KeyedLimiter is the limiter for a single key. Implements ports.Limiter.
type KeyedLimiter struct {
	factory *Factory
	key     string
}

// Consume takes one attempt and reports whether it was accepted.
func (l *KeyedLimiter) Consume() bool {
	return l.factory.consume(l.key)
}

// Key returns the identifying key the limiter is bound to.
func (l *KeyedLimiter) Key() string { return l.key }
