package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

func TestAvailableBalanceCheck_Supports(t *testing.T) {
	check := NewAvailableBalanceCheck()
	tc := testContext(t, "50000", "100", nil, nil)

	buy := sandbox.BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))
	supported, err := check.Supports(context.Background(), buy, tc)
	require.NoError(t, err)
	assert.True(t, supported)

	stop := sandbox.StopIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))
	supported, err = check.Supports(context.Background(), stop, tc)
	require.NoError(t, err)
	assert.False(t, supported)
}

func TestAvailableBalanceCheck_Check(t *testing.T) {
	// 0.1 BTC at 50000 with 100x leverage needs 50 USDT margin.
	buy := sandbox.BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))

	tests := []struct {
		name       string
		free       string
		wantPass   bool
		wantReason FailedReason
	}{
		{name: "fundable order passes", free: "100", wantPass: true},
		{name: "exact margin passes", free: "50", wantPass: true},
		{name: "underfunded order fails", free: "49.99", wantReason: ReasonInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewAvailableBalanceCheck()
			tc := testContext(t, "50000", tt.free, nil, nil)

			result, err := check.Check(context.Background(), buy, tc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPass, result.Success())
			if !tt.wantPass {
				assert.Equal(t, tt.wantReason, result.Reason())
			}
		})
	}
}

func TestAvailableBalanceCheck_CountsCommittedMargin(t *testing.T) {
	// Free balance covers the new order alone, but not on top of the margin
	// already committed to the open position.
	long := buildPosition(t, domain.PositionParams{
		Side:          domain.SideBuy,
		Symbol:        domain.Symbol{Name: "BTCUSDT"},
		EntryPrice:    mustPrice(t, "50000"),
		Size:          mustAmount(t, "0.1"),
		InitialMargin: mustAmount(t, "60"),
	})
	check := NewAvailableBalanceCheck()
	tc := testContext(t, "50000", "100", long, nil)

	buy := sandbox.BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.1"))
	result, err := check.Check(context.Background(), buy, tc)
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, ReasonInsufficientBalance, result.Reason())
}
