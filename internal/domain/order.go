package domain

import "time"

// OrderStatus represents the lifecycle state of a persisted order intent.
type OrderStatus string

const (
	// OrderStatusActive indicates the order is waiting to be placed or filled.
	OrderStatusActive OrderStatus = "active"
	// OrderStatusPlaced indicates the order has been submitted to the exchange.
	OrderStatusPlaced OrderStatus = "placed"
	// OrderStatusFilled indicates the order has been executed.
	OrderStatusFilled OrderStatus = "filled"
	// OrderStatusCancelled indicates the order was withdrawn before execution.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusRejected indicates the order failed the trading checks.
	OrderStatusRejected OrderStatus = "rejected"
)

// BuyOrder is a persisted intent to increase exposure on one side of a
// symbol. It is read-only input to the check pipeline; the sandbox consumes
// it through sandbox.FromBuyOrder.
type BuyOrder struct {
	ID           int64       // Unique identifier (from DB)
	Symbol       string      // Trading symbol (e.g. "BTCUSDT")
	PositionSide Side        // Side of the position the order adds to
	Price        Price       // Limit price
	Volume       CoinAmount  // Quantity in base coin
	Status       OrderStatus // Current lifecycle state
	CreatedAt    time.Time   // When the intent was recorded
	UpdatedAt    time.Time   // When the intent last changed state
}

// Stop is a persisted intent to reduce or close exposure on one side of a
// symbol once the trigger price is reached. Read-only input to the check
// pipeline; the sandbox consumes it through sandbox.FromStop.
type Stop struct {
	ID           int64       // Unique identifier (from DB)
	Symbol       string      // Trading symbol
	PositionSide Side        // Side of the position the stop closes
	TriggerPrice Price       // Price at which the stop fires
	Volume       CoinAmount  // Quantity to close, in base coin
	Status       OrderStatus // Current lifecycle state
	CreatedAt    time.Time   // When the intent was recorded
	UpdatedAt    time.Time   // When the intent last changed state
}
