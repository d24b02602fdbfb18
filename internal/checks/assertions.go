package checks

import (
	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

// AssertOrderAheadOfLiquidation rejects an order whose execution price has
// already been passed by the position's liquidation price: at or below it
// for a long, at or above it for a short. A position without a reported
// liquidation price passes. Pure function of (position, intent); success is
// a nil error. Callable standalone or as a sub-step inside a check.
func AssertOrderAheadOfLiquidation(p *domain.Position, o sandbox.Intent) error {
	liq := p.LiquidationPrice()
	if liq.IsZero() {
		return nil
	}
	if p.IsLong() && o.Price.LessThanOrEqual(liq) {
		return &LiquidationBreachError{Side: p.Side(), OrderPrice: o.Price, LiquidationPrice: liq}
	}
	if p.IsShort() && o.Price.GreaterThanOrEqual(liq) {
		return &LiquidationBreachError{Side: p.Side(), OrderPrice: o.Price, LiquidationPrice: liq}
	}
	return nil
}

// AssertPositionSize rejects a non-positive position or order size.
func AssertPositionSize(size domain.CoinAmount) error {
	if !size.IsPositive() {
		return domain.ErrSizeNotPositive
	}
	return nil
}
