package ports

import (
	"context"
	"time"

	"hedgeguard/internal/domain"
)

// WalletBalance is the settlement-coin balance snapshot used to seed a
// sandbox state.
type WalletBalance struct {
	Coin      string            // Settlement coin (e.g. "USDT")
	Available domain.CoinAmount // Balance available for new orders
	Total     domain.CoinAmount // Total wallet balance
	Free      domain.CoinAmount // Balance not locked by orders
}

// OrderResponse represents the essential details returned after placing an order.
type OrderResponse struct {
	OrderID       int64             // Exchange's order ID
	Symbol        string            // Symbol for the order
	ClientOrderID string            // User-defined order ID
	Price         domain.Price      // Price of the order
	AvgPrice      domain.Price      // Average filled price
	OrigQuantity  domain.CoinAmount // Original quantity requested
	ExecutedQty   domain.CoinAmount // Quantity filled
	Status        string            // Order status (e.g. NEW, FILLED, CANCELED)
	Type          string            // Order type (e.g. LIMIT, STOP_MARKET)
	Side          domain.Side       // Position side the order acts on
	Timestamp     time.Time         // Time the order response was generated
}

// PositionSource supplies current positions and market prices. The core
// never calls the exchange directly; it receives already-resolved values
// through this interface.
type PositionSource interface {
	// GetPosition retrieves the open position for a symbol and side.
	// Returns nil, nil when no position is open on that side.
	GetPosition(ctx context.Context, symbol string, side domain.Side) (*domain.Position, error)

	// GetAllPositions retrieves every open position grouped by symbol, each
	// group in stable exchange order with opposite sides linked.
	GetAllPositions(ctx context.Context) (map[string][]*domain.Position, error)

	// Ticker retrieves the current market prices for a symbol.
	Ticker(ctx context.Context, symbol string) (domain.Ticker, error)
}

// BalanceSource supplies contract-wallet balances.
type BalanceSource interface {
	// GetContractWalletBalance retrieves the wallet balance for a coin.
	GetContractWalletBalance(ctx context.Context, coin string) (WalletBalance, error)
}

// SymbolSource supplies immutable symbol reference data, looked up by name.
// Implementations are expected to cache: symbols never change within a
// process lifetime outside of symbol initialization.
type SymbolSource interface {
	// GetSymbol retrieves the reference data for a symbol name.
	// Returns ErrSymbolNotFound when the exchange does not list it.
	GetSymbol(ctx context.Context, name string) (domain.Symbol, error)
}

// OrderGateway submits real orders to the exchange. It is only called after
// every trading check has passed.
type OrderGateway interface {
	// PlaceLimitOrder places a limit order adding exposure on a side.
	PlaceLimitOrder(ctx context.Context, symbol string, side domain.Side, price domain.Price, volume domain.CoinAmount) (*OrderResponse, error)

	// PlaceStopOrder places a stop-market order reducing exposure on a side.
	PlaceStopOrder(ctx context.Context, symbol string, side domain.Side, triggerPrice domain.Price, volume domain.CoinAmount) (*OrderResponse, error)
}
