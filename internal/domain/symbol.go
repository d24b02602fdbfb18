package domain

import "github.com/shopspring/decimal"

// Symbol is immutable reference data for one tradable instrument: its
// rounding rules and settlement coin. Symbols are looked up by name from a
// ports.SymbolSource and cached; they are never mutated after creation.
type Symbol struct {
	// Name is the instrument identifier (e.g. "BTCUSDT").
	Name string
	// TickSize is the minimum price increment.
	TickSize Price
	// MinOrderQty is the minimum order quantity in base coin.
	MinOrderQty CoinAmount
	// PricePrecision is the number of decimal places prices are quoted at.
	PricePrecision int32
	// QtyPrecision is the number of decimal places quantities are quoted at.
	QtyPrecision int32
	// SettlementCoin is the coin margins and PnL are denominated in (e.g. "USDT").
	SettlementCoin string
}

// RoundPrice rounds a price down to the symbol's tick size. Prices with no
// configured tick size are rounded to the symbol's price precision.
func (s Symbol) RoundPrice(p Price) Price {
	if s.TickSize.IsZero() {
		return NewPrice(p.Decimal().Round(s.PricePrecision))
	}
	tick := s.TickSize.Decimal()
	ticks := p.Decimal().Div(tick).Floor()
	return NewPrice(ticks.Mul(tick))
}

// RoundVolume rounds a quantity down to the symbol's quantity precision.
func (s Symbol) RoundVolume(v CoinAmount) CoinAmount {
	return NewCoinAmount(v.Decimal().RoundDown(s.QtyPrecision))
}

// MeetsMinOrderQty reports whether a quantity satisfies the symbol's minimum
// order size.
func (s Symbol) MeetsMinOrderQty(v CoinAmount) bool {
	if s.MinOrderQty.IsZero() {
		return v.IsPositive()
	}
	return v.GreaterThanOrEqual(s.MinOrderQty)
}

var two = decimal.NewFromInt(2)

// Ticker is a snapshot of current market prices for one symbol.
type Ticker struct {
	// Symbol is the instrument the prices belong to.
	Symbol string
	// MarkPrice is the price used for liquidation and unrealised PnL.
	MarkPrice Price
	// IndexPrice is the underlying index price.
	IndexPrice Price
	// LastPrice is the last traded price.
	LastPrice Price
}

// MidPrice returns the average of mark and index prices. Falls back to the
// mark price when the index price is missing.
func (t Ticker) MidPrice() Price {
	if t.IndexPrice.IsZero() {
		return t.MarkPrice
	}
	return NewPrice(t.MarkPrice.Decimal().Add(t.IndexPrice.Decimal()).Div(two))
}
