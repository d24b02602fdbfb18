package sandbox

import (
	"errors"
	"fmt"

	"hedgeguard/internal/domain"
)

// Simulation errors. These are the expected negative outcomes of "can this
// order be applied" and are treated by callers as failed checks, not crashes.
var (
	// ErrInsufficientAvailableBalance means applying the order would drive
	// the projected available balance below zero.
	ErrInsufficientAvailableBalance = errors.New("sandbox: insufficient available balance")
	// ErrPositionNotFound means the order targets a side with no open
	// position in the sandbox.
	ErrPositionNotFound = errors.New("sandbox: position not found")
)

// InsufficientBalanceError carries the figures behind an
// ErrInsufficientAvailableBalance outcome.
type InsufficientBalanceError struct {
	Symbol    string
	Side      domain.Side
	Required  domain.CoinAmount // margin the order would add
	Available domain.CoinAmount // balance available before the order
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("sandbox: insufficient available balance for %s %s: required margin %s, available %s",
		e.Symbol, e.Side, e.Required, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientAvailableBalance }

// PositionNotFoundError carries the side a close order failed to find a
// position on.
type PositionNotFoundError struct {
	Symbol string
	Side   domain.Side
}

func (e *PositionNotFoundError) Error() string {
	return fmt.Sprintf("sandbox: no open %s position on %s", e.Side, e.Symbol)
}

func (e *PositionNotFoundError) Unwrap() error { return ErrPositionNotFound }
