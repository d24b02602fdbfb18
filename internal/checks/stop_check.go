package checks

import (
	"context"
	"errors"
	"fmt"

	"hedgeguard/internal/sandbox"
)

// StopCloseCheck verifies a stop order can actually close what it targets:
// a position must be open on the stop's side and the trigger price must not
// already sit beyond the position's liquidation price.
type StopCloseCheck struct{}

// NewStopCloseCheck builds the check.
func NewStopCloseCheck() *StopCloseCheck {
	return &StopCloseCheck{}
}

// Name implements Check.
func (c *StopCloseCheck) Name() string { return "stop_close" }

// Supports applies the check to stop intents only.
func (c *StopCloseCheck) Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error) {
	return intent.IsStop(), nil
}

// Check projects the stop into the sandbox. A flat side is a failed result
// (ReasonPositionNotFound), not a crash; a trigger price beyond liquidation
// fails with ReasonOrderBeyondLiquidation.
func (c *StopCloseCheck) Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error) {
	state, err := tc.SandboxState(ctx)
	if err != nil {
		return Result{}, err
	}

	position := state.Position(intent.Side)
	if position != nil {
		if err := AssertOrderAheadOfLiquidation(position, intent); err != nil {
			var breach *LiquidationBreachError
			if errors.As(err, &breach) {
				return Fail(c.Name(), breach.Error(), ReasonOrderBeyondLiquidation), nil
			}
			return Result{}, err
		}
	}

	projected, err := sandbox.ApplyStop(state, intent)
	if err != nil {
		if errors.Is(err, sandbox.ErrPositionNotFound) {
			return Fail(c.Name(), err.Error(), ReasonPositionNotFound), nil
		}
		return Result{}, err
	}

	return Pass(c.Name(), fmt.Sprintf("projected free balance after stop %s", projected.FreeBalance())), nil
}
