package sandbox

import "hedgeguard/internal/domain"

// State is a virtual account snapshot for one symbol: current market prices,
// the free settlement-coin balance and up to one position per side. It is
// never persisted and never touches real state; a State is scoped to a
// single order-evaluation cycle.
type State struct {
	ticker      domain.Ticker
	freeBalance domain.CoinAmount
	long        *domain.Position
	short       *domain.Position

	// Leverage assumed for a position opened inside the projection, when no
	// existing position supplies one. Zero means domain.DefaultLeverage.
	fallbackLeverage int
}

// NewState builds a sandbox state from already-resolved real data. Either
// position may be nil. Pure constructor, no I/O.
func NewState(ticker domain.Ticker, freeBalance domain.CoinAmount, long, short *domain.Position) State {
	return State{ticker: ticker, freeBalance: freeBalance, long: long, short: short}
}

// WithFallbackLeverage returns a copy of the state assuming the given
// leverage for positions freshly opened in the projection. Non-positive
// values are ignored.
func (s State) WithFallbackLeverage(leverage int) State {
	next := s
	if leverage > 0 {
		next.fallbackLeverage = leverage
	}
	return next
}

// FallbackLeverage returns the leverage assumed for fresh positions,
// domain.DefaultLeverage unless configured otherwise.
func (s State) FallbackLeverage() int {
	if s.fallbackLeverage > 0 {
		return s.fallbackLeverage
	}
	return domain.DefaultLeverage
}

// Ticker returns the market prices the state was built against.
func (s State) Ticker() domain.Ticker { return s.ticker }

// FreeBalance returns the free settlement-coin balance.
func (s State) FreeBalance() domain.CoinAmount { return s.freeBalance }

// Position returns the position on the given side, or nil.
func (s State) Position(side domain.Side) *domain.Position {
	if side.IsLong() {
		return s.long
	}
	return s.short
}

// Positions returns the open positions in stable (long, short) order,
// skipping absent sides.
func (s State) Positions() []*domain.Position {
	var out []*domain.Position
	if s.long != nil {
		out = append(out, s.long)
	}
	if s.short != nil {
		out = append(out, s.short)
	}
	return out
}

// AvailableBalance returns the free balance minus the margin already
// committed to open positions. The Apply functions guarantee it never goes
// negative as a result of simulation.
func (s State) AvailableBalance() domain.CoinAmount {
	available := s.freeBalance
	if s.long != nil {
		available = available.Sub(s.long.InitialMargin())
	}
	if s.short != nil {
		available = available.Sub(s.short.InitialMargin())
	}
	return available
}

// withPosition returns a copy of the state carrying the given position on
// its side. A nil position clears the side.
func (s State) withPosition(side domain.Side, p *domain.Position) State {
	next := s
	if side.IsLong() {
		next.long = p
	} else {
		next.short = p
	}
	return next
}

// withFreeBalance returns a copy of the state with a new free balance.
func (s State) withFreeBalance(b domain.CoinAmount) State {
	next := s
	next.freeBalance = b
	return next
}

// Equal reports structural equality of two states: same prices, same free
// balance and positions equal field by field.
func (s State) Equal(o State) bool {
	if !s.freeBalance.Equal(o.freeBalance) ||
		!s.ticker.MarkPrice.Equal(o.ticker.MarkPrice) ||
		s.ticker.Symbol != o.ticker.Symbol {
		return false
	}
	return positionsEqual(s.long, o.long) && positionsEqual(s.short, o.short)
}

func positionsEqual(a, b *domain.Position) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Side() == b.Side() &&
		a.Symbol().Name == b.Symbol().Name &&
		a.EntryPrice().Equal(b.EntryPrice()) &&
		a.Size().Equal(b.Size()) &&
		a.LiquidationPrice().Equal(b.LiquidationPrice()) &&
		a.InitialMargin().Equal(b.InitialMargin())
}
