package checks

import (
	"context"
	"errors"
	"fmt"

	"hedgeguard/internal/sandbox"
)

// AvailableBalanceCheck verifies a buy order can be funded: applying it to
// the sandbox must leave the available balance non-negative.
type AvailableBalanceCheck struct{}

// NewAvailableBalanceCheck builds the check.
func NewAvailableBalanceCheck() *AvailableBalanceCheck {
	return &AvailableBalanceCheck{}
}

// Name implements Check.
func (c *AvailableBalanceCheck) Name() string { return "available_balance" }

// Supports applies the check to buy intents only.
func (c *AvailableBalanceCheck) Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error) {
	return intent.IsBuy(), nil
}

// Check projects the order and fails with ReasonInsufficientBalance when
// the sandbox rejects it for funding.
func (c *AvailableBalanceCheck) Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error) {
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

	return Pass(c.Name(), fmt.Sprintf("projected available balance %s", projected.AvailableBalance())), nil
}
