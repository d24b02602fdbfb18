package checks

import (
	"errors"
	"fmt"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
)

var (
	// ErrOrderBeyondLiquidation signals that an order's execution price has
	// already been passed by the position's liquidation price, so the order
	// can never realistically execute as intended.
	ErrOrderBeyondLiquidation = errors.New("position is liquidated before the order price")
	// ErrReferencedPositionNotFound signals that a check's applicability
	// test needed a position that does not exist. The pipeline skips such
	// checks rather than failing them.
	ErrReferencedPositionNotFound = errors.New("referenced position not found")
	// ErrTooManyTries signals that a check's internal retry budget has been
	// exhausted. Propagated to the caller, never retried by the pipeline.
	ErrTooManyTries = errors.New("too many tries for check")
)

// LiquidationBreachError reports an order priced at or beyond the
// position's liquidation price.
type LiquidationBreachError struct {
	Side             domain.Side
	OrderPrice       domain.Price
	LiquidationPrice domain.Price
}

func (e *LiquidationBreachError) Error() string {
	if e.Side.IsLong() {
		return "Order price is less than position.liquidationPrice"
	}
	return "Order price is greater than position.liquidationPrice"
}

func (e *LiquidationBreachError) Unwrap() error { return ErrOrderBeyondLiquidation }

// TooManyTriesError identifies which check ran out of retries.
type TooManyTriesError struct {
	Check string
	Tries int
}

func (e *TooManyTriesError) Error() string {
	return fmt.Sprintf("too many tries for check %s: gave up after %d attempts", e.Check, e.Tries)
}

func (e *TooManyTriesError) Unwrap() error { return ErrTooManyTries }

// UnexpectedSandboxFailureError wraps any unanticipated error raised while
// evaluating inside a sandbox step. It is fatal to the current evaluation
// cycle and always propagated, whether or not it was reported.
type UnexpectedSandboxFailureError struct {
	Caller string
	Intent sandbox.Intent
	Err    error
}

func (e *UnexpectedSandboxFailureError) Error() string {
	msg := fmt.Sprintf("unexpected sandbox failure in %s evaluating %s order for %s %s: %v",
		e.Caller, e.Intent.Kind, e.Intent.Symbol, e.Intent.Side, e.Err)
	if e.Intent.SourceOrderID != 0 {
		msg += fmt.Sprintf(" (source order id %d)", e.Intent.SourceOrderID)
	}
	return msg
}

func (e *UnexpectedSandboxFailureError) Unwrap() error { return e.Err }
