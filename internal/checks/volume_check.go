package checks

import (
	"context"
	"fmt"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

// OrderVolumeCheck verifies an order's volume against the symbol's minimum
// order quantity from exchange reference data.
type OrderVolumeCheck struct {
	symbol domain.Symbol
}

// NewOrderVolumeCheck builds the check for one symbol's rounding rules.
func NewOrderVolumeCheck(symbol domain.Symbol) *OrderVolumeCheck {
	return &OrderVolumeCheck{symbol: symbol}
}

// Name implements Check.
func (c *OrderVolumeCheck) Name() string { return "order_volume" }

// Supports applies the check to intents for the configured symbol.
func (c *OrderVolumeCheck) Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error) {
	return intent.Symbol == c.symbol.Name, nil
}

// Check fails when the volume is non-positive or below the symbol minimum.
func (c *OrderVolumeCheck) Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error) {
	if !c.symbol.MeetsMinOrderQty(intent.Volume) {
		return Fail(c.Name(),
			fmt.Sprintf("order volume %s is below the minimum order quantity %s for %s",
				intent.Volume, c.symbol.MinOrderQty, c.symbol.Name),
			ReasonBelowMinOrderQty), nil
	}
	return Pass(c.Name(), fmt.Sprintf("order volume %s meets the %s minimum", intent.Volume, c.symbol.Name)), nil
}
