// Package sandbox projects "what if" account state for candidate orders
// without any side effect. States are built once per evaluation cycle from
// real data and then advance only through the pure Apply functions.
package sandbox

import "hedgeguard/internal/domain"

// Kind tags the two normalized order-intent variants the simulation
// understands. Persisted orders are converted once at the boundary; the
// engine never dispatches on their concrete origin type.
type Kind string

const (
	// KindBuy increases exposure on the intent's side.
	KindBuy Kind = "buy"
	// KindStop reduces or closes exposure on the intent's side.
	KindStop Kind = "stop"
)

// Intent is an immutable, normalized order intent: the uniform input to
// simulation and to liquidation assertions regardless of where the order
// came from.
type Intent struct {
	// Kind selects the simulation variant (buy or stop).
	Kind Kind
	// Symbol is the trading symbol the intent targets.
	Symbol string
	// Side is the position side the intent acts on.
	Side domain.Side
	// Price is the limit price for a buy, the trigger price for a stop.
	Price domain.Price
	// Volume is the quantity in base coin.
	Volume domain.CoinAmount
	// SourceOrderID is the persisted order's ID when the intent originated
	// from the database, zero otherwise.
	SourceOrderID int64
}

// BuyIntent builds a buy intent from raw fields.
func BuyIntent(symbol string, side domain.Side, price domain.Price, volume domain.CoinAmount) Intent {
	return Intent{Kind: KindBuy, Symbol: symbol, Side: side, Price: price, Volume: volume}
}

// StopIntent builds a stop intent from raw fields.
func StopIntent(symbol string, side domain.Side, price domain.Price, volume domain.CoinAmount) Intent {
	return Intent{Kind: KindStop, Symbol: symbol, Side: side, Price: price, Volume: volume}
}

// FromBuyOrder converts a persisted buy order into a buy intent.
func FromBuyOrder(o *domain.BuyOrder) Intent {
	return Intent{
		Kind:          KindBuy,
		Symbol:        o.Symbol,
		Side:          o.PositionSide,
		Price:         o.Price,
		Volume:        o.Volume,
		SourceOrderID: o.ID,
	}
}

// FromStop converts a persisted stop into a stop intent.
func FromStop(s *domain.Stop) Intent {
	return Intent{
		Kind:          KindStop,
		Symbol:        s.Symbol,
		Side:          s.PositionSide,
		Price:         s.TriggerPrice,
		Volume:        s.Volume,
		SourceOrderID: s.ID,
	}
}

// IsBuy reports whether the intent increases exposure.
func (i Intent) IsBuy() bool { return i.Kind == KindBuy }

// IsStop reports whether the intent reduces exposure.
func (i Intent) IsStop() bool { return i.Kind == KindStop }
