package checks

import (
	"context"
	"fmt"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

// FixationSource supplies the number of profit fixations already taken on a
// position. The figure is transient (derived from recent trade history), so
// reads may fail and are retried within the check's own budget.
type FixationSource interface {
	FixationCount(ctx context.Context, symbol string, side domain.Side) (int, error)
}

// PnlFixationCheck limits how many times profit may be fixed off one
// position: a stop that would exceed the fixation budget is rejected. The
// check owns a small retry budget for deriving the transient fixation
// count; when that budget runs out it surfaces ErrTooManyTries to the
// caller instead of guessing.
type PnlFixationCheck struct {
	source       FixationSource
	maxFixations int
	maxTries     int
}

// NewPnlFixationCheck builds the check. A non-positive retry budget
// defaults to 3 attempts.
func NewPnlFixationCheck(source FixationSource, maxFixations, maxTries int) *PnlFixationCheck {
	if maxTries <= 0 {
		maxTries = 3
	}
	return &PnlFixationCheck{source: source, maxFixations: maxFixations, maxTries: maxTries}
}

// Name implements Check.
func (c *PnlFixationCheck) Name() string { return "pnl_fixation" }

// Supports applies the check to stop intents targeting an open position; a
// flat side surfaces ErrReferencedPositionNotFound so the pipeline skips
// the check.
func (c *PnlFixationCheck) Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error) {
	if !intent.IsStop() {
		return false, nil
	}
	pos, err := tc.CurrentPosition(ctx, intent.Side)
	if err != nil {
		return false, err
	}
	if pos == nil {
		return false, fmt.Errorf("%s %s: %w", intent.Symbol, intent.Side, ErrReferencedPositionNotFound)
	}
	return true, nil
}

// Check re-derives the fixation count, retrying transient failures up to
// the budget, and fails the order when the position's fixation budget is
// already spent.
func (c *PnlFixationCheck) Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error) {
	var (
		count   int
		lastErr error
	)
	for try := 0; try < c.maxTries; try++ {
		count, lastErr = c.source.FixationCount(ctx, intent.Symbol, intent.Side)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return Result{}, &TooManyTriesError{Check: c.Name(), Tries: c.maxTries}
	}

	if count >= c.maxFixations {
		return Fail(c.Name(),
			fmt.Sprintf("%d of %d profit fixations already taken on %s %s",
				count, c.maxFixations, intent.Symbol, intent.Side),
			ReasonFixationBudgetSpent), nil
	}

	return Pass(c.Name(), fmt.Sprintf("%d of %d profit fixations taken", count, c.maxFixations)), nil
}
