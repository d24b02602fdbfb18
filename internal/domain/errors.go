package domain

import (
	"errors"
	"fmt"
)

// Domain validation errors. These are fatal to the operation that raised
// them and are never retried.
var (
	// ErrSizeNotPositive rejects a position size less than or equal to zero.
	ErrSizeNotPositive = errors.New("position size cannot be less or equals zero")
	// ErrPercentOutOfRange rejects a volume-part percent outside (0, 100].
	ErrPercentOutOfRange = errors.New("percent must be greater than 0 and not greater than 100")
	// ErrInvalidSide rejects an unknown position side.
	ErrInvalidSide = errors.New("invalid position side")
	// ErrLiquidationOnWrongSide rejects a liquidation price that does not lie
	// beyond the entry price in the direction of loss.
	ErrLiquidationOnWrongSide = errors.New("liquidation price is on the wrong side of the entry price")
)

// LiquidationDirectionError reports a liquidation price that is not strictly
// beyond the entry price in the direction of loss (below entry for a long,
// above entry for a short). The value is never clamped or repaired.
type LiquidationDirectionError struct {
	Side             Side
	EntryPrice       Price
	LiquidationPrice Price
}

func (e *LiquidationDirectionError) Error() string {
	if e.Side.IsLong() {
		return fmt.Sprintf("long liquidation price %s must be less than entry price %s",
			e.LiquidationPrice, e.EntryPrice)
	}
	return fmt.Sprintf("short liquidation price %s must be greater than entry price %s",
		e.LiquidationPrice, e.EntryPrice)
}

func (e *LiquidationDirectionError) Unwrap() error { return ErrLiquidationOnWrongSide }
