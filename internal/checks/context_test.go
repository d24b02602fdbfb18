package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgeguard/internal/domain"
)

func TestContext_CurrentPositionMemoizes(t *testing.T) {
	long := buildPosition(t, domain.PositionParams{
		Side:       domain.SideBuy,
		EntryPrice: mustPrice(t, "50000"),
		Size:       mustAmount(t, "0.1"),
	})
	positions := &mockPositionSource{long: long}
	tc := NewContext(testTicker(t, "50000"), "USDT", positions, &mockBalanceSource{free: mustAmount(t, "100")})

	first, err := tc.CurrentPosition(context.Background(), domain.SideBuy)
	require.NoError(t, err)
	second, err := tc.CurrentPosition(context.Background(), domain.SideBuy)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, positions.getPositionCalls, "position resolved at most once per cycle")
}

func TestContext_FlatSideMemoizesNil(t *testing.T) {
	positions := &mockPositionSource{}
	tc := NewContext(testTicker(t, "50000"), "USDT", positions, &mockBalanceSource{free: mustAmount(t, "100")})

	pos, err := tc.CurrentPosition(context.Background(), domain.SideSell)
	require.NoError(t, err)
	assert.Nil(t, pos)

	_, err = tc.CurrentPosition(context.Background(), domain.SideSell)
	require.NoError(t, err)
	assert.Equal(t, 1, positions.getPositionCalls, "a flat side is memoized too")
}

func TestContext_SandboxStateLinksOppositesAndMemoizes(t *testing.T) {
	long := buildPosition(t, domain.PositionParams{
		Side:       domain.SideBuy,
		EntryPrice: mustPrice(t, "50000"),
		Size:       mustAmount(t, "0.1"),
	})
	short := buildPosition(t, domain.PositionParams{
		Side:       domain.SideSell,
		EntryPrice: mustPrice(t, "51000"),
		Size:       mustAmount(t, "0.2"),
	})
	positions := &mockPositionSource{long: long, short: short}
	balances := &mockBalanceSource{free: mustAmount(t, "98.1001")}
	tc := NewContext(testTicker(t, "50000"), "USDT", positions, balances)

	state, err := tc.SandboxState(context.Background())
	require.NoError(t, err)

	assert.True(t, state.FreeBalance().Equal(mustAmount(t, "98.1001")))
	stateLong := state.Position(domain.SideBuy)
	stateShort := state.Position(domain.SideSell)
	require.NotNil(t, stateLong)
	require.NotNil(t, stateShort)
	require.NotNil(t, stateLong.Opposite(), "both sides open must be linked")
	assert.Equal(t, domain.SideSell, stateLong.Opposite().Side())
	assert.Equal(t, domain.SideBuy, stateShort.Opposite().Side())

	_, err = tc.SandboxState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, balances.calls, "sandbox state built at most once per cycle")
}

func TestContext_ResetStateForcesRecomputation(t *testing.T) {
	positions := &mockPositionSource{}
	balances := &mockBalanceSource{free: mustAmount(t, "100")}
	tc := NewContext(testTicker(t, "50000"), "USDT", positions, balances)

	_, err := tc.SandboxState(context.Background())
	require.NoError(t, err)
	tc.ResetState()
	_, err = tc.SandboxState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, balances.calls)
}

func TestContext_FallbackLeverageFlowsIntoSandboxState(t *testing.T) {
	positions := &mockPositionSource{}
	balances := &mockBalanceSource{free: mustAmount(t, "100")}
	tc := NewContext(testTicker(t, "50000"), "USDT", positions, balances).
		WithFallbackLeverage(25)

	state, err := tc.SandboxState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, state.FallbackLeverage())
}

func TestContext_DefaultFallbackLeverage(t *testing.T) {
	tc := NewContext(testTicker(t, "50000"), "USDT", &mockPositionSource{}, &mockBalanceSource{free: mustAmount(t, "100")})

	state, err := tc.SandboxState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLeverage, state.FallbackLeverage())
}

func TestContext_WithoutThrottling(t *testing.T) {
	tc := testContext(t, "50000", "100", nil, nil)
	assert.False(t, tc.ThrottlingDisabled())
	assert.True(t, tc.WithoutThrottling().ThrottlingDisabled())
}
