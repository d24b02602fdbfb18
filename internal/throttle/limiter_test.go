package throttle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFactory_SingleAttemptWindow(t *testing.T) {
	now := time.Now()
	factory := NewFactory(Config{Period: time.Minute, MaxAttempts: 1}).
		WithClock(func() time.Time { return now })

	limiter := factory.Create("buy_BTCUSDT_Buy")

	assert.True(t, limiter.Consume(), "first attempt must be accepted")
	assert.False(t, limiter.Consume(), "second attempt in the same window must be rejected")

	// Advance past the window: the key starts fresh.
	now = now.Add(time.Minute)
	assert.True(t, limiter.Consume())
	assert.False(t, limiter.Consume())
}

func TestFactory_KeysAreIndependent(t *testing.T) {
	now := time.Now()
	factory := NewFactory(Config{Period: time.Minute, MaxAttempts: 1}).
		WithClock(func() time.Time { return now })

	a := factory.Create("buy_BTCUSDT_Buy")
	b := factory.Create("stop_BTCUSDT_Sell")

	assert.True(t, a.Consume())
	assert.True(t, b.Consume(), "a consumed key must not affect other keys")
	assert.False(t, a.Consume())
	assert.False(t, b.Consume())
}

func TestFactory_SameKeySharesWindow(t *testing.T) {
	factory := NewFactory(Config{Period: time.Minute, MaxAttempts: 1})

	first := factory.Create("buy_BTCUSDT_Buy")
	second := factory.Create("buy_BTCUSDT_Buy")

	assert.True(t, first.Consume())
	assert.False(t, second.Consume(), "limiters for the same key share one window")
}

func TestFactory_MultipleAttempts(t *testing.T) {
	now := time.Now()
	factory := NewFactory(Config{Period: time.Minute, MaxAttempts: 3}).
		WithClock(func() time.Time { return now })

	limiter := factory.Create("key")
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Consume(), "attempt %d should be accepted", i+1)
	}
	assert.False(t, limiter.Consume())
}

func TestFactory_Defaults(t *testing.T) {
	factory := NewFactory(Config{})
	assert.Equal(t, time.Minute, factory.cfg.Period)
	assert.Equal(t, 1, factory.cfg.MaxAttempts)
}

func TestKeyedLimiter_Key(t *testing.T) {
	factory := NewFactory(Config{})
	limiter := factory.Create("some_key")

	keyed, ok := limiter.(*KeyedLimiter)
	assert.True(t, ok)
	assert.Equal(t, "some_key", keyed.Key())
}

func TestFactory_ConcurrentConsume(t *testing.T) {
	factory := NewFactory(Config{Period: time.Minute, MaxAttempts: 1})

	const goroutines = 16
	accepted := make(chan bool, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- factory.Create("contended").Consume()
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for ok := range accepted {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one concurrent attempt may win the window")
}
