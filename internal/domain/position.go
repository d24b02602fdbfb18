package domain

import "github.com/shopspring/decimal"

// DefaultLeverage is the leverage applied in percent-PnL calculations.
// The exchange does not report a usable per-position leverage for every
// account mode, so the figure is an explicit constant rather than being
// inferred from margin. Overridable per position via PositionParams.Leverage.
const DefaultLeverage = 100

// PositionParams holds the raw figures a Position is built from, normally
// parsed straight from an exchange position-risk response.
type PositionParams struct {
	Side             Side
	Symbol           Symbol
	EntryPrice       Price
	Size             CoinAmount // base-coin contract size, must be > 0
	PositionValue    CoinAmount // notional value in settlement coin; derived from entry × size when zero
	LiquidationPrice Price      // zero when the exchange reports none (cross margin, tiny position)
	UnrealisedPnl    CoinAmount
	InitialMargin    CoinAmount
	Leverage         int // 0 means DefaultLeverage
}

// Position is one directional exposure on one symbol, optionally linked to
// the opposite-side position forming a hedge. A Position is an immutable
// snapshot: simulation advances state by building new positions via
// CloneWithSize, never by mutating in place.
type Position struct {
	side             Side
	symbol           Symbol
	entryPrice       Price
	size             CoinAmount
	positionValue    CoinAmount
	liquidationPrice Price
	unrealisedPnl    CoinAmount
	initialMargin    CoinAmount
	leverage         int
	opposite         *Position
}

// NewPosition validates the parameters and builds an immutable Position.
// It rejects a non-positive size and a liquidation price on the wrong side
// of the entry price; a zero liquidation price is accepted as "not set".
func NewPosition(p PositionParams) (*Position, error) {
	if !p.Side.IsValid() {
		return nil, ErrInvalidSide
	}
	if !p.Size.IsPositive() {
		return nil, ErrSizeNotPositive
	}
	if !p.LiquidationPrice.IsZero() {
		if p.Side.IsLong() && p.LiquidationPrice.GreaterThanOrEqual(p.EntryPrice) {
			return nil, &LiquidationDirectionError{Side: p.Side, EntryPrice: p.EntryPrice, LiquidationPrice: p.LiquidationPrice}
		}
		if p.Side.IsShort() && p.LiquidationPrice.LessThanOrEqual(p.EntryPrice) {
			return nil, &LiquidationDirectionError{Side: p.Side, EntryPrice: p.EntryPrice, LiquidationPrice: p.LiquidationPrice}
		}
	}
	value := p.PositionValue
	if value.IsZero() {
		value = p.EntryPrice.Mul(p.Size)
	}
	leverage := p.Leverage
	if leverage <= 0 {
		leverage = DefaultLeverage
	}
	return &Position{
		side:             p.Side,
		symbol:           p.Symbol,
		entryPrice:       p.EntryPrice,
		size:             p.Size,
		positionValue:    value,
		liquidationPrice: p.LiquidationPrice,
		unrealisedPnl:    p.UnrealisedPnl,
		initialMargin:    p.InitialMargin,
		leverage:         leverage,
	}, nil
}

// Side returns the position's direction.
func (p *Position) Side() Side { return p.side }

// Symbol returns the instrument the position is open on.
func (p *Position) Symbol() Symbol { return p.symbol }

// EntryPrice returns the average entry price.
func (p *Position) EntryPrice() Price { return p.entryPrice }

// Size returns the contract size in base coin.
func (p *Position) Size() CoinAmount { return p.size }

// PositionValue returns the notional value in settlement coin.
func (p *Position) PositionValue() CoinAmount { return p.positionValue }

// LiquidationPrice returns the price at which the exchange force-closes the
// position. Zero when the exchange reports none.
func (p *Position) LiquidationPrice() Price { return p.liquidationPrice }

// UnrealisedPnl returns the exchange-reported unrealised PnL snapshot.
func (p *Position) UnrealisedPnl() CoinAmount { return p.unrealisedPnl }

// InitialMargin returns the margin committed to the position.
func (p *Position) InitialMargin() CoinAmount { return p.initialMargin }

// Leverage returns the leverage used for percent-PnL calculations.
func (p *Position) Leverage() int { return p.leverage }

// IsLong reports whether the position is on the buy side.
func (p *Position) IsLong() bool { return p.side.IsLong() }

// IsShort reports whether the position is on the sell side.
func (p *Position) IsShort() bool { return p.side.IsShort() }

// PnlInQuote returns the unrealised PnL in settlement coin at the given
// price: sign(side) × (price − entryPrice) × size.
func (p *Position) PnlInQuote(price Price) CoinAmount {
	diff := price.Decimal().Sub(p.entryPrice.Decimal())
	pnl := diff.Mul(p.size.Decimal()).Mul(decimal.NewFromInt(p.side.PnlSign()))
	return NewCoinAmount(pnl)
}

// PnlInPercent returns the leveraged PnL at the given price as a percent of
// the entry price: sign(side) × (price − entryPrice)/entryPrice × leverage × 100.
func (p *Position) PnlInPercent(price Price) Percent {
	if p.entryPrice.IsZero() {
		return Percent{}
	}
	diff := price.Decimal().Sub(p.entryPrice.Decimal())
	pct := diff.Div(p.entryPrice.Decimal()).
		Mul(decimal.NewFromInt(p.side.PnlSign())).
		Mul(decimal.NewFromInt(int64(p.leverage))).
		Mul(decimal.NewFromInt(100))
	return NewPercent(pct)
}

// IsInLoss reports whether the position's PnL at the given mark price is
// negative.
func (p *Position) IsInLoss(markPrice Price) bool {
	return p.PnlInQuote(markPrice).IsNegative()
}

// VolumePart returns size × percent/100. The percent must lie in (0, 100].
func (p *Position) VolumePart(percent Percent) (CoinAmount, error) {
	hundred := decimal.NewFromInt(100)
	if !percent.Decimal().IsPositive() || percent.Decimal().GreaterThan(hundred) {
		return CoinAmount{}, ErrPercentOutOfRange
	}
	return p.size.Part(percent), nil
}

// LinkOpposite returns a copy of the position linked to the given
// opposite-side position. The receiver is left untouched.
func (p *Position) LinkOpposite(opposite *Position) *Position {
	linked := *p
	linked.opposite = opposite
	return &linked
}

// Opposite returns the linked opposite-side position, or nil.
func (p *Position) Opposite() *Position { return p.opposite }

// Hedge returns the hedge formed with the linked opposite-side position,
// or nil when the position is unhedged.
func (p *Position) Hedge() *Hedge {
	if p.opposite == nil {
		return nil
	}
	return NewHedge(p, p.opposite)
}

// CloneWithSize builds a new Position with an updated size, entry price,
// margin and liquidation price, keeping the side, symbol and leverage. Used
// by the sandbox to advance simulated state without mutation.
func (p *Position) CloneWithSize(size CoinAmount, entryPrice Price, initialMargin CoinAmount, liquidationPrice Price) (*Position, error) {
	return NewPosition(PositionParams{
		Side:             p.side,
		Symbol:           p.symbol,
		EntryPrice:       entryPrice,
		Size:             size,
		LiquidationPrice: liquidationPrice,
		InitialMargin:    initialMargin,
		Leverage:         p.leverage,
	})
}
