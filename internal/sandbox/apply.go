package sandbox

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hedgeguard/internal/domain"
)

// ApplyBuy projects the state after executing a buy intent: the target side
// grows by the intent's volume at a weighted-average entry price, the
// liquidation price is recomputed from the margin relationship, and the
// added margin is committed. Fails with ErrInsufficientAvailableBalance when
// the projected available balance would be negative.
//
// ApplyBuy is referentially transparent: it never mutates its input and
// equal inputs always produce equal outputs.
func ApplyBuy(s State, o Intent) (State, error) {
	if !o.IsBuy() {
		return State{}, fmt.Errorf("sandbox: intent kind %q cannot be applied as a buy", o.Kind)
	}

	existing := s.Position(o.Side)
	leverage := s.FallbackLeverage()
	if existing != nil {
		leverage = existing.Leverage()
	}

	addedValue := o.Price.Mul(o.Volume)
	addedMargin := domain.NewCoinAmount(addedValue.Decimal().Div(decimal.NewFromInt(int64(leverage))))

	available := s.AvailableBalance()
	if available.Sub(addedMargin).IsNegative() {
		return State{}, &InsufficientBalanceError{
			Symbol:    o.Symbol,
			Side:      o.Side,
			Required:  addedMargin,
			Available: available,
		}
	}

	var (
		next *domain.Position
		err  error
	)
	if existing == nil {
		next, err = domain.NewPosition(domain.PositionParams{
			Side:             o.Side,
			Symbol:           domain.Symbol{Name: o.Symbol},
			EntryPrice:       o.Price,
			Size:             o.Volume,
			LiquidationPrice: liquidationPrice(o.Side, o.Price, leverage),
			InitialMargin:    addedMargin,
			Leverage:         leverage,
		})
	} else {
		newSize := existing.Size().Add(o.Volume)
		newValue := existing.PositionValue().Add(addedValue)
		newEntry := domain.NewPrice(newValue.Decimal().Div(newSize.Decimal()))
		newMargin := existing.InitialMargin().Add(addedMargin)
		next, err = existing.CloneWithSize(newSize, newEntry, newMargin, liquidationPrice(o.Side, newEntry, leverage))
	}
	if err != nil {
		return State{}, fmt.Errorf("sandbox: projecting buy of %s %s: %w", o.Volume, o.Symbol, err)
	}

	return s.withPosition(o.Side, next), nil
}

// ApplyStop projects the state after a stop intent executes: the target
// side shrinks by the intent's volume, the realized PnL and freed margin
// flow into the free balance, and the position disappears entirely when its
// size reaches zero. Fails with ErrPositionNotFound when the side is flat.
//
// Like ApplyBuy, ApplyStop is pure.
func ApplyStop(s State, o Intent) (State, error) {
	if !o.IsStop() {
		return State{}, fmt.Errorf("sandbox: intent kind %q cannot be applied as a stop", o.Kind)
	}

	existing := s.Position(o.Side)
	if existing == nil {
		return State{}, &PositionNotFoundError{Symbol: o.Symbol, Side: o.Side}
	}

	closed := o.Volume
	if closed.GreaterThan(existing.Size()) {
		closed = existing.Size()
	}

	// PnL realized on the closed part at the stop price.
	realized := existing.PnlInQuote(o.Price).Decimal().
		Mul(closed.Decimal()).
		Div(existing.Size().Decimal())
	freedMargin := existing.InitialMargin().Decimal().
		Mul(closed.Decimal()).
		Div(existing.Size().Decimal())

	freeBalance := s.FreeBalance().
		Add(domain.NewCoinAmount(freedMargin)).
		Add(domain.NewCoinAmount(realized))
	next := s.withFreeBalance(freeBalance)

	remaining := existing.Size().Sub(closed)
	if !remaining.IsPositive() {
		return next.withPosition(o.Side, nil), nil
	}

	reduced, err := existing.CloneWithSize(
		remaining,
		existing.EntryPrice(),
		existing.InitialMargin().Sub(domain.NewCoinAmount(freedMargin)),
		existing.LiquidationPrice(),
	)
	if err != nil {
		return State{}, fmt.Errorf("sandbox: projecting stop of %s %s: %w", o.Volume, o.Symbol, err)
	}
	return next.withPosition(o.Side, reduced), nil
}

// Apply dispatches an intent to the matching projection.
func Apply(s State, o Intent) (State, error) {
	if o.IsBuy() {
		return ApplyBuy(s, o)
	}
	return ApplyStop(s, o)
}

// liquidationPrice approximates the margin-based liquidation price for an
// isolated position: the mark price move that consumes the initial margin,
// i.e. entry × (1 − 1/leverage) for a long and entry × (1 + 1/leverage) for
// a short. Maintenance margin is ignored, matching the exchange's
// simplified formula for small positions.
func liquidationPrice(side domain.Side, entry domain.Price, leverage int) domain.Price {
	one := decimal.NewFromInt(1)
	step := one.Div(decimal.NewFromInt(int64(leverage)))
	if side.IsLong() {
		return domain.NewPrice(entry.Decimal().Mul(one.Sub(step)))
	}
	return domain.NewPrice(entry.Decimal().Mul(one.Add(step)))
}
