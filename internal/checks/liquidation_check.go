package checks

import (
	"context"
	"errors"
	"fmt"

	"hedgeguard/internal/sandbox"
)

// OrderAheadOfLiquidationCheck rejects an order whose price has already
// been passed by the current position's liquidation price. Applies to any
// intent targeting a side with an open position.
type OrderAheadOfLiquidationCheck struct{}

// NewOrderAheadOfLiquidationCheck builds the check.
func NewOrderAheadOfLiquidationCheck() *OrderAheadOfLiquidationCheck {
	return &OrderAheadOfLiquidationCheck{}
}

// Name implements Check.
func (c *OrderAheadOfLiquidationCheck) Name() string { return "order_ahead_of_liquidation" }

// Supports applies the check whenever a position is open on the intent's
// side; a flat side surfaces ErrReferencedPositionNotFound so the pipeline
// skips the check.
func (c *OrderAheadOfLiquidationCheck) Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error) {
	pos, err := tc.CurrentPosition(ctx, intent.Side)
	if err != nil {
		return false, err
	}
	if pos == nil {
		return false, fmt.Errorf("%s %s: %w", intent.Symbol, intent.Side, ErrReferencedPositionNotFound)
	}
	return true, nil
}

// Check delegates to the liquidation assertion against the current position.
func (c *OrderAheadOfLiquidationCheck) Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error) {
	pos, err := tc.CurrentPosition(ctx, intent.Side)
	if err != nil {
		return Result{}, err
	}

	if err := AssertOrderAheadOfLiquidation(pos, intent); err != nil {
		var breach *LiquidationBreachError
		if errors.As(err, &breach) {
			return Fail(c.Name(), breach.Error(), ReasonOrderBeyondLiquidation), nil
		}
		return Result{}, err
	}

	return Pass(c.Name(), fmt.Sprintf("order price %s is ahead of liquidation price %s",
		intent.Price, pos.LiquidationPrice())), nil
}
