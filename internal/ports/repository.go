package ports

import (
	"context"

	"hedgeguard/internal/domain"
)

// BuyOrderRepository defines the interface for storing and retrieving
// persisted buy-order intents. The check pipeline treats them as read-only
// inputs; lifecycle updates happen in the application service.
type BuyOrderRepository interface {
	// CreateBuyOrder saves a new buy order and returns its assigned ID.
	CreateBuyOrder(ctx context.Context, order *domain.BuyOrder) (int64, error)
	// FindActiveBuyOrders retrieves active buy orders for a symbol, oldest first.
	FindActiveBuyOrders(ctx context.Context, symbol string) ([]*domain.BuyOrder, error)
	// FindBuyOrderByID retrieves a buy order by its ID.
	// Returns nil, nil if not found.
	FindBuyOrderByID(ctx context.Context, id int64) (*domain.BuyOrder, error)
	// UpdateBuyOrderStatus moves a buy order to a new lifecycle state.
	UpdateBuyOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

// StopRepository defines the interface for storing and retrieving persisted
// stop intents.
type StopRepository interface {
	// CreateStop saves a new stop and returns its assigned ID.
	CreateStop(ctx context.Context, stop *domain.Stop) (int64, error)
	// FindActiveStops retrieves active stops for a symbol, oldest first.
	FindActiveStops(ctx context.Context, symbol string) ([]*domain.Stop, error)
	// FindStopByID retrieves a stop by its ID.
	// Returns nil, nil if not found.
	FindStopByID(ctx context.Context, id int64) (*domain.Stop, error)
	// UpdateStopStatus moves a stop to a new lifecycle state.
	UpdateStopStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}
