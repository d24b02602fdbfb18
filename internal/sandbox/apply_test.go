package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgeguard/internal/domain"
)

func TestApplyBuy_FreshPosition(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), nil, nil)
	intent := BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	projected, err := ApplyBuy(state, intent)
	require.NoError(t, err)

	pos := projected.Position(domain.SideBuy)
	require.NotNil(t, pos)
	assert.Equal(t, "0.1", pos.Size().String())
	assert.True(t, pos.EntryPrice().Equal(mustPrice(t, "50000")))
	assert.True(t, pos.InitialMargin().Equal(mustAmount(t, "50")), "margin = %s", pos.InitialMargin())
	// entry × (1 − 1/leverage) at the default 100x
	assert.True(t, pos.LiquidationPrice().Equal(mustPrice(t, "49500")), "liq = %s", pos.LiquidationPrice())

	assert.True(t, projected.AvailableBalance().Equal(mustAmount(t, "50")))
	assert.True(t, projected.FreeBalance().Equal(mustAmount(t, "100")), "buy commits margin, free balance unchanged")
}

func TestApplyBuy_ConfiguredFallbackLeverage(t *testing.T) {
	intent := BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	t.Run("fresh position opens at the configured leverage", func(t *testing.T) {
		state := NewState(testTicker(t, "50000"), mustAmount(t, "250"), nil, nil).
			WithFallbackLeverage(25)

		projected, err := ApplyBuy(state, intent)
		require.NoError(t, err)

		pos := projected.Position(domain.SideBuy)
		require.NotNil(t, pos)
		assert.Equal(t, 25, pos.Leverage())
		assert.True(t, pos.InitialMargin().Equal(mustAmount(t, "200")), "margin = %s", pos.InitialMargin())
		// entry × (1 − 1/25)
		assert.True(t, pos.LiquidationPrice().Equal(mustPrice(t, "48000")), "liq = %s", pos.LiquidationPrice())
	})

	t.Run("existing position leverage wins over the fallback", func(t *testing.T) {
		existing := buildPosition(t, domain.PositionParams{
			Side:          domain.SideBuy,
			Symbol:        domain.Symbol{Name: "BTCUSDT"},
			EntryPrice:    mustPrice(t, "50000"),
			Size:          mustAmount(t, "0.1"),
			InitialMargin: mustAmount(t, "50"),
			Leverage:      100,
		})
		state := NewState(testTicker(t, "50000"), mustAmount(t, "200"), existing, nil).
			WithFallbackLeverage(25)

		projected, err := ApplyBuy(state, intent)
		require.NoError(t, err)

		pos := projected.Position(domain.SideBuy)
		require.NotNil(t, pos)
		assert.Equal(t, 100, pos.Leverage())
		assert.True(t, pos.InitialMargin().Equal(mustAmount(t, "100")), "margin = %s", pos.InitialMargin())
	})

	t.Run("non-positive values are ignored", func(t *testing.T) {
		state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), nil, nil).
			WithFallbackLeverage(0)
		assert.Equal(t, domain.DefaultLeverage, state.FallbackLeverage())
	})
}

func TestApplyBuy_ShortLiquidationAboveEntry(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), nil, nil)
	intent := BuyIntent("BTCUSDT", domain.SideSell, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	projected, err := ApplyBuy(state, intent)
	require.NoError(t, err)

	pos := projected.Position(domain.SideSell)
	require.NotNil(t, pos)
	assert.True(t, pos.LiquidationPrice().Equal(mustPrice(t, "50500")), "liq = %s", pos.LiquidationPrice())
}

func TestApplyBuy_MergesAtWeightedAverageEntry(t *testing.T) {
	existing := buildPosition(t, domain.PositionParams{
		Side:          domain.SideBuy,
		Symbol:        domain.Symbol{Name: "BTCUSDT"},
		EntryPrice:    mustPrice(t, "50000"),
		Size:          mustAmount(t, "0.1"),
		InitialMargin: mustAmount(t, "50"),
	})
	state := NewState(testTicker(t, "60000"), mustAmount(t, "200"), existing, nil)
	intent := BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "60000"), mustAmount(t, "0.1"))

	projected, err := ApplyBuy(state, intent)
	require.NoError(t, err)

	pos := projected.Position(domain.SideBuy)
	require.NotNil(t, pos)
	assert.Equal(t, "0.2", pos.Size().String())
	// (5000 + 6000) / 0.2
	assert.True(t, pos.EntryPrice().Equal(mustPrice(t, "55000")), "entry = %s", pos.EntryPrice())
	assert.True(t, pos.InitialMargin().Equal(mustAmount(t, "110")), "margin = %s", pos.InitialMargin())
	assert.True(t, pos.LiquidationPrice().Equal(mustPrice(t, "54450")), "liq = %s", pos.LiquidationPrice())

	// The pre-existing position object is untouched.
	assert.Equal(t, "0.1", existing.Size().String())
}

func TestApplyBuy_InsufficientBalance(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "40"), nil, nil)
	intent := BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	_, err := ApplyBuy(state, intent)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientAvailableBalance)

	var balErr *InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.True(t, balErr.Required.Equal(mustAmount(t, "50")))
	assert.True(t, balErr.Available.Equal(mustAmount(t, "40")))
}

func TestApplyBuy_ExactBalanceAccepted(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "50"), nil, nil)
	intent := BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	projected, err := ApplyBuy(state, intent)
	require.NoError(t, err)
	assert.True(t, projected.AvailableBalance().IsZero())
}

func TestApplyBuy_RejectsWrongKind(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), nil, nil)
	stop := StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	_, err := ApplyBuy(state, stop)
	assert.Error(t, err)

	_, err = ApplyStop(state, BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1")))
	assert.Error(t, err)
}

func TestApplyBuy_IsPure(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), nil, nil)
	intent := BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	first, err := ApplyBuy(state, intent)
	require.NoError(t, err)
	second, err := ApplyBuy(state, intent)
	require.NoError(t, err)

	assert.True(t, first.Equal(second), "equal inputs must produce equal outputs")
	assert.Nil(t, state.Position(domain.SideBuy), "input state must stay untouched")
	assert.True(t, state.FreeBalance().Equal(mustAmount(t, "100")))
}

func TestApplyStop_FullClose(t *testing.T) {
	long := buildPosition(t, domain.PositionParams{
		Side:          domain.SideBuy,
		Symbol:        domain.Symbol{Name: "BTCUSDT"},
		EntryPrice:    mustPrice(t, "50000"),
		Size:          mustAmount(t, "0.1"),
		InitialMargin: mustAmount(t, "50"),
	})
	state := NewState(testTicker(t, "51000"), mustAmount(t, "100"), long, nil)
	intent := StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "51000"), mustAmount(t, "0.1"))

	projected, err := ApplyStop(state, intent)
	require.NoError(t, err)

	assert.Nil(t, projected.Position(domain.SideBuy), "fully closed position must disappear")
	// 100 + 50 freed margin + 100 realized profit
	assert.True(t, projected.FreeBalance().Equal(mustAmount(t, "250")), "free = %s", projected.FreeBalance())
}

func TestApplyStop_PartialClose(t *testing.T) {
	long := buildPosition(t, domain.PositionParams{
		Side:          domain.SideBuy,
		Symbol:        domain.Symbol{Name: "BTCUSDT"},
		EntryPrice:    mustPrice(t, "50000"),
		Size:          mustAmount(t, "0.1"),
		InitialMargin: mustAmount(t, "50"),
	})
	state := NewState(testTicker(t, "49000"), mustAmount(t, "100"), long, nil)
	intent := StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "49000"), mustAmount(t, "0.04"))

	projected, err := ApplyStop(state, intent)
	require.NoError(t, err)

	pos := projected.Position(domain.SideBuy)
	require.NotNil(t, pos)
	assert.Equal(t, "0.06", pos.Size().String())
	assert.True(t, pos.InitialMargin().Equal(mustAmount(t, "30")), "margin = %s", pos.InitialMargin())
	assert.True(t, pos.EntryPrice().Equal(mustPrice(t, "50000")), "entry unchanged by partial close")

	// 100 + 20 freed margin − 40 realized loss
	assert.True(t, projected.FreeBalance().Equal(mustAmount(t, "80")), "free = %s", projected.FreeBalance())
}

func TestApplyStop_OverCloseClampsToPositionSize(t *testing.T) {
	long := buildPosition(t, domain.PositionParams{
		Side:          domain.SideBuy,
		Symbol:        domain.Symbol{Name: "BTCUSDT"},
		EntryPrice:    mustPrice(t, "50000"),
		Size:          mustAmount(t, "0.1"),
		InitialMargin: mustAmount(t, "50"),
	})
	state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), long, nil)
	intent := StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.5"))

	projected, err := ApplyStop(state, intent)
	require.NoError(t, err)

	assert.Nil(t, projected.Position(domain.SideBuy))
	assert.True(t, projected.FreeBalance().Equal(mustAmount(t, "150")), "free = %s", projected.FreeBalance())
}

func TestApplyStop_FlatSide(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), nil, nil)
	intent := StopIntent("BTCUSDT", domain.SideSell, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	_, err := ApplyStop(state, intent)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPositionNotFound)

	var notFound *PositionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, domain.SideSell, notFound.Side)
}

func TestApplyStop_ShortPositionRealizesInvertedPnl(t *testing.T) {
	short := buildPosition(t, domain.PositionParams{
		Side:             domain.SideSell,
		Symbol:           domain.Symbol{Name: "BTCUSDT"},
		EntryPrice:       mustPrice(t, "50000"),
		Size:             mustAmount(t, "0.1"),
		LiquidationPrice: mustPrice(t, "50500"),
		InitialMargin:    mustAmount(t, "50"),
	})
	state := NewState(testTicker(t, "49000"), mustAmount(t, "100"), nil, short)
	intent := StopIntent("BTCUSDT", domain.SideSell, mustPrice(t, "49000"), mustAmount(t, "0.1"))

	projected, err := ApplyStop(state, intent)
	require.NoError(t, err)

	// 100 + 50 freed margin + 100 profit from the falling price
	assert.True(t, projected.FreeBalance().Equal(mustAmount(t, "250")), "free = %s", projected.FreeBalance())
}

func TestApply_DispatchesOnKind(t *testing.T) {
	state := NewState(testTicker(t, "50000"), mustAmount(t, "100"), nil, nil)

	buy := BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))
	projected, err := Apply(state, buy)
	require.NoError(t, err)
	assert.NotNil(t, projected.Position(domain.SideBuy))

	stop := StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))
	_, err = Apply(state, stop)
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestIntent_FromPersistedOrders(t *testing.T) {
	buyOrder := &domain.BuyOrder{
		ID:           42,
		Symbol:       "BTCUSDT",
		PositionSide: domain.SideBuy,
		Price:        mustPrice(t, "50000"),
		Volume:       mustAmount(t, "0.1"),
	}
	intent := FromBuyOrder(buyOrder)
	assert.True(t, intent.IsBuy())
	assert.Equal(t, int64(42), intent.SourceOrderID)
	assert.Equal(t, "BTCUSDT", intent.Symbol)

	stop := &domain.Stop{
		ID:           7,
		Symbol:       "BTCUSDT",
		PositionSide: domain.SideSell,
		TriggerPrice: mustPrice(t, "51000"),
		Volume:       mustAmount(t, "0.05"),
	}
	stopIntent := FromStop(stop)
	assert.True(t, stopIntent.IsStop())
	assert.Equal(t, int64(7), stopIntent.SourceOrderID)
	assert.True(t, stopIntent.Price.Equal(mustPrice(t, "51000")))
}
