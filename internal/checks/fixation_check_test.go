package checks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

// flakyFixationSource fails a configured number of times before succeeding.
type flakyFixationSource struct {
	count    int
	failures int

	calls int
}

func (s *flakyFixationSource) FixationCount(ctx context.Context, symbol string, side domain.Side) (int, error) {
	s.calls++
	if s.calls <= s.failures {
		return 0, errors.New("transient read failure")
	}
	return s.count, nil
}

func fixationTestPosition(t *testing.T) *domain.Position {
	t.Helper()
	return buildPosition(t, domain.PositionParams{
		Side:       domain.SideBuy,
		Symbol:     domain.Symbol{Name: "BTCUSDT"},
		EntryPrice: mustPrice(t, "50000"),
		Size:       mustAmount(t, "0.1"),
	})
}

func TestPnlFixationCheck_Supports(t *testing.T) {
	check := NewPnlFixationCheck(&flakyFixationSource{}, 3, 3)
	stop := sandbox.StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "51000"), mustAmount(t, "0.05"))

	t.Run("buy intents not supported", func(t *testing.T) {
		tc := testContext(t, "50000", "100", fixationTestPosition(t), nil)
		buy := sandbox.BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))
		supported, err := check.Supports(context.Background(), buy, tc)
		require.NoError(t, err)
		assert.False(t, supported)
	})

	t.Run("stop on a flat side is a skip", func(t *testing.T) {
		tc := testContext(t, "50000", "100", nil, nil)
		_, err := check.Supports(context.Background(), stop, tc)
		assert.ErrorIs(t, err, ErrReferencedPositionNotFound)
	})

	t.Run("stop on an open position is supported", func(t *testing.T) {
		tc := testContext(t, "50000", "100", fixationTestPosition(t), nil)
		supported, err := check.Supports(context.Background(), stop, tc)
		require.NoError(t, err)
		assert.True(t, supported)
	})
}

func TestPnlFixationCheck_Check(t *testing.T) {
	stop := sandbox.StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "51000"), mustAmount(t, "0.05"))

	t.Run("budget left passes", func(t *testing.T) {
		check := NewPnlFixationCheck(&flakyFixationSource{count: 2}, 3, 3)
		tc := testContext(t, "50000", "100", fixationTestPosition(t), nil)

		result, err := check.Check(context.Background(), stop, tc)
		require.NoError(t, err)
		assert.True(t, result.Success())
	})

	t.Run("budget spent fails", func(t *testing.T) {
		check := NewPnlFixationCheck(&flakyFixationSource{count: 3}, 3, 3)
		tc := testContext(t, "50000", "100", fixationTestPosition(t), nil)

		result, err := check.Check(context.Background(), stop, tc)
		require.NoError(t, err)
		assert.False(t, result.Success())
		assert.Equal(t, ReasonFixationBudgetSpent, result.Reason(),
			"a spent fixation budget is not a retry exhaustion")
	})

	t.Run("transient failures are retried within the budget", func(t *testing.T) {
		source := &flakyFixationSource{count: 1, failures: 2}
		check := NewPnlFixationCheck(source, 3, 3)
		tc := testContext(t, "50000", "100", fixationTestPosition(t), nil)

		result, err := check.Check(context.Background(), stop, tc)
		require.NoError(t, err)
		assert.True(t, result.Success())
		assert.Equal(t, 3, source.calls)
	})

	t.Run("exhausted retries surface too many tries", func(t *testing.T) {
		source := &flakyFixationSource{failures: 10}
		check := NewPnlFixationCheck(source, 3, 3)
		tc := testContext(t, "50000", "100", fixationTestPosition(t), nil)

		_, err := check.Check(context.Background(), stop, tc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTooManyTries)
		assert.Equal(t, 3, source.calls, "budget bounds the attempts")
	})
}
