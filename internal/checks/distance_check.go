package checks

import (
	"context"
	"errors"
	"fmt"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

// FurtherLiquidationDistanceCheck projects a buy order into the sandbox and
// verifies that the main position's liquidation price would still keep a
// safe distance from the current mark price. A hedged account is judged by
// the hedge's main position, the same position loss alerting acts on.
type FurtherLiquidationDistanceCheck struct {
	safeDistance domain.Percent
}

// NewFurtherLiquidationDistanceCheck builds the check with the minimum
// acceptable mark-to-liquidation distance.
func NewFurtherLiquidationDistanceCheck(safeDistance domain.Percent) *FurtherLiquidationDistanceCheck {
	return &FurtherLiquidationDistanceCheck{safeDistance: safeDistance}
}

// Name implements Check.
func (c *FurtherLiquidationDistanceCheck) Name() string { return "further_liquidation_distance" }

// Supports applies the check to buy intents only.
func (c *FurtherLiquidationDistanceCheck) Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error) {
	return intent.IsBuy(), nil
}

// Check applies the order to the sandbox and measures the projected main
// position's liquidation distance. An order the sandbox cannot fund fails
// with ReasonInsufficientBalance instead of crashing the cycle.
func (c *FurtherLiquidationDistanceCheck) Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error) {
	state, err := tc.SandboxState(ctx)
	if err != nil {
		return Result{}, err
	}

	projected, err := sandbox.ApplyBuy(state, intent)
	if err != nil {
		if errors.Is(err, sandbox.ErrInsufficientAvailableBalance) {
			return Fail(c.Name(), err.Error(), ReasonInsufficientBalance), nil
		}
		return Result{}, err
	}

	main := mainPosition(projected)
	if main == nil || main.LiquidationPrice().IsZero() {
		return Pass(c.Name(), "no liquidation price to keep distance from"), nil
	}

	mark := tc.Ticker().MarkPrice
	distance := mark.DistanceTo(main.LiquidationPrice())
	if distance.LessThan(c.safeDistance) {
		return Fail(c.Name(),
			fmt.Sprintf("further main position liquidation is too close: %s%% from mark price %s, safe distance is %s%%",
				distance, mark, c.safeDistance),
			ReasonLiquidationTooClose), nil
	}

	return Pass(c.Name(), fmt.Sprintf("projected liquidation distance %s%% from mark price %s", distance, mark)), nil
}

// mainPosition picks the position the account's risk hangs on: the larger
// side of a hedged state, otherwise the only open position.
func mainPosition(state sandbox.State) *domain.Position {
	positions := state.Positions()
	switch len(positions) {
	case 0:
		return nil
	case 1:
		return positions[0]
	default:
		return domain.NewHedge(positions[0], positions[1]).Main()
	}
}
