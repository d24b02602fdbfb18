package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

func testCheckSymbol(t *testing.T) domain.Symbol {
	t.Helper()
	return domain.Symbol{
		Name:           "BTCUSDT",
		MinOrderQty:    mustAmount(t, "0.001"),
		SettlementCoin: "USDT",
	}
}

func TestOrderVolumeCheck_Supports(t *testing.T) {
	check := NewOrderVolumeCheck(testCheckSymbol(t))
	tc := testContext(t, "50000", "100", nil, nil)

	matching := sandbox.BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, "0.001"))
	supported, err := check.Supports(context.Background(), matching, tc)
	require.NoError(t, err)
	assert.True(t, supported)

	other := sandbox.BuyIntent("ETHUSDT", domain.SideBuy, mustPrice(t, "3000"), mustAmount(t, "0.001"))
	supported, err = check.Supports(context.Background(), other, tc)
	require.NoError(t, err)
	assert.False(t, supported)
}

func TestOrderVolumeCheck_Check(t *testing.T) {
	tests := []struct {
		name     string
		volume   string
		wantPass bool
	}{
		{name: "at the minimum", volume: "0.001", wantPass: true},
		{name: "above the minimum", volume: "0.5", wantPass: true},
		{name: "below the minimum", volume: "0.0009", wantPass: false},
		{name: "zero volume", volume: "0", wantPass: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewOrderVolumeCheck(testCheckSymbol(t))
			tc := testContext(t, "50000", "100", nil, nil)
			intent := sandbox.BuyIntent("BTCUSDT", domain.SideBuy, mustPrice(t, "50000"), mustAmount(t, tt.volume))

			result, err := check.Check(context.Background(), intent, tc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPass, result.Success())
			if !tt.wantPass {
				assert.Equal(t, ReasonBelowMinOrderQty, result.Reason())
			}
		})
	}
}
