// Package domain contains the core trading model: exact-precision money
// types, sides, symbols, positions and hedges. Everything in this package is
// pure and free of I/O.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is an exact-precision price in the symbol's quote (settlement) coin.
type Price struct {
	v decimal.Decimal
}

// NewPrice wraps a decimal value as a Price.
func NewPrice(v decimal.Decimal) Price {
	return Price{v: v}
}

// NewPriceFromString parses a decimal string (e.g. "59426.56") into a Price.
func NewPriceFromString(s string) (Price, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price{v: v}, nil
}

// NewPriceFromFloat converts a float into a Price.
// Prefer NewPriceFromString for values coming off the wire.
func NewPriceFromFloat(f float64) Price {
	return Price{v: decimal.NewFromFloat(f)}
}

// Decimal returns the underlying decimal value.
func (p Price) Decimal() decimal.Decimal { return p.v }

// Add returns p + o.
func (p Price) Add(o Price) Price { return Price{v: p.v.Add(o.v)} }

// Sub returns p − o.
func (p Price) Sub(o Price) Price { return Price{v: p.v.Sub(o.v)} }

// Mul multiplies the price by a quantity, yielding a quote-coin amount
// (the notional value of that quantity at this price).
func (p Price) Mul(qty CoinAmount) CoinAmount {
	return CoinAmount{v: p.v.Mul(qty.v)}
}

// DistanceTo returns the absolute relative distance between p and o as a
// percentage of p. Returns zero percent when p is zero.
func (p Price) DistanceTo(o Price) Percent {
	if p.v.IsZero() {
		return Percent{}
	}
	return Percent{v: p.v.Sub(o.v).Abs().Div(p.v).Mul(decimal.NewFromInt(100))}
}

// Cmp compares two prices: -1 if p < o, 0 if equal, +1 if p > o.
func (p Price) Cmp(o Price) int { return p.v.Cmp(o.v) }

// Equal reports whether two prices are numerically equal.
func (p Price) Equal(o Price) bool { return p.v.Equal(o.v) }

// LessThan reports p < o.
func (p Price) LessThan(o Price) bool { return p.v.LessThan(o.v) }

// LessThanOrEqual reports p <= o.
func (p Price) LessThanOrEqual(o Price) bool { return p.v.LessThanOrEqual(o.v) }

// GreaterThan reports p > o.
func (p Price) GreaterThan(o Price) bool { return p.v.GreaterThan(o.v) }

// GreaterThanOrEqual reports p >= o.
func (p Price) GreaterThanOrEqual(o Price) bool { return p.v.GreaterThanOrEqual(o.v) }

// IsZero reports whether the price is zero (commonly "not set").
func (p Price) IsZero() bool { return p.v.IsZero() }

// String renders the price as a plain decimal string.
func (p Price) String() string { return p.v.String() }

// CoinAmount is an exact-precision amount of a coin: either a contract size
// (base coin) or a balance/margin/PnL figure (settlement coin), depending on
// context.
type CoinAmount struct {
	v decimal.Decimal
}

// NewCoinAmount wraps a decimal value as a CoinAmount.
func NewCoinAmount(v decimal.Decimal) CoinAmount {
	return CoinAmount{v: v}
}

// NewCoinAmountFromString parses a decimal string into a CoinAmount.
func NewCoinAmountFromString(s string) (CoinAmount, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return CoinAmount{}, fmt.Errorf("invalid coin amount %q: %w", s, err)
	}
	return CoinAmount{v: v}, nil
}

// NewCoinAmountFromFloat converts a float into a CoinAmount.
func NewCoinAmountFromFloat(f float64) CoinAmount {
	return CoinAmount{v: decimal.NewFromFloat(f)}
}

// Decimal returns the underlying decimal value.
func (a CoinAmount) Decimal() decimal.Decimal { return a.v }

// Add returns a + o.
func (a CoinAmount) Add(o CoinAmount) CoinAmount { return CoinAmount{v: a.v.Add(o.v)} }

// Sub returns a − o.
func (a CoinAmount) Sub(o CoinAmount) CoinAmount { return CoinAmount{v: a.v.Sub(o.v)} }

// Part returns the given percent of the amount (e.g. Part(50%) halves it).
func (a CoinAmount) Part(p Percent) CoinAmount {
	return CoinAmount{v: a.v.Mul(p.v).Div(decimal.NewFromInt(100))}
}

// Cmp compares two amounts: -1 if a < o, 0 if equal, +1 if a > o.
func (a CoinAmount) Cmp(o CoinAmount) int { return a.v.Cmp(o.v) }

// Equal reports whether two amounts are numerically equal.
func (a CoinAmount) Equal(o CoinAmount) bool { return a.v.Equal(o.v) }

// LessThan reports a < o.
func (a CoinAmount) LessThan(o CoinAmount) bool { return a.v.LessThan(o.v) }

// GreaterThan reports a > o.
func (a CoinAmount) GreaterThan(o CoinAmount) bool { return a.v.GreaterThan(o.v) }

// GreaterThanOrEqual reports a >= o.
func (a CoinAmount) GreaterThanOrEqual(o CoinAmount) bool { return a.v.GreaterThanOrEqual(o.v) }

// IsZero reports whether the amount is zero.
func (a CoinAmount) IsZero() bool { return a.v.IsZero() }

// IsNegative reports whether the amount is below zero.
func (a CoinAmount) IsNegative() bool { return a.v.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (a CoinAmount) IsPositive() bool { return a.v.IsPositive() }

// String renders the amount as a plain decimal string.
func (a CoinAmount) String() string { return a.v.String() }

// Percent is an exact-precision percentage expressed in percentage points
// (50 means 50%).
type Percent struct {
	v decimal.Decimal
}

// NewPercent wraps a decimal value as a Percent.
func NewPercent(v decimal.Decimal) Percent {
	return Percent{v: v}
}

// NewPercentFromString parses a decimal string into a Percent.
func NewPercentFromString(s string) (Percent, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	return Percent{v: v}, nil
}

// NewPercentFromFloat converts a float into a Percent.
func NewPercentFromFloat(f float64) Percent {
	return Percent{v: decimal.NewFromFloat(f)}
}

// Decimal returns the underlying decimal value (percentage points).
func (p Percent) Decimal() decimal.Decimal { return p.v }

// Equal reports whether two percents are numerically equal.
func (p Percent) Equal(o Percent) bool { return p.v.Equal(o.v) }

// LessThan reports p < o.
func (p Percent) LessThan(o Percent) bool { return p.v.LessThan(o.v) }

// GreaterThan reports p > o.
func (p Percent) GreaterThan(o Percent) bool { return p.v.GreaterThan(o.v) }

// IsNegative reports whether the percent is below zero.
func (p Percent) IsNegative() bool { return p.v.IsNegative() }

// String renders the percent as a plain decimal string (no % suffix).
func (p Percent) String() string { return p.v.String() }
