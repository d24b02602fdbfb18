// Package app wires the verification core to its collaborators: every
// candidate order is persisted, evaluated by the check pipeline against a
// fresh sandbox projection, and submitted to the exchange only when all
// checks pass.
package app

import (
	"context"
	"errors"
	"fmt"

	"hedgeguard/config"
	"hedgeguard/internal/checks"
	"hedgeguard/internal/domain"
	"hedgeguard/internal/ports"
	"hedgeguard/internal/sandbox"
)

// ErrChecksRejected signals that one or more trading checks failed and the
// order was not submitted.
var ErrChecksRejected = errors.New("order rejected by trading checks")

// RejectedError carries the full set of check results behind an
// ErrChecksRejected outcome. The first failed result is authoritative.
type RejectedError struct {
	Results []checks.Result
}

func (e *RejectedError) Error() string {
	if failed, ok := checks.FirstFailed(e.Results); ok {
		return fmt.Sprintf("order rejected by trading checks: %s: %s", failed.Source(), failed.Reason())
	}
	return "order rejected by trading checks"
}

func (e *RejectedError) Unwrap() error { return ErrChecksRejected }

// GuardService is the use-case boundary of the verification core.
type GuardService struct {
	cfg       *config.Config
	logger    ports.Logger
	positions ports.PositionSource
	balances  ports.BalanceSource
	gateway   ports.OrderGateway
	buyRepo   ports.BuyOrderRepository
	stopRepo  ports.StopRepository
	pipeline  *checks.Pipeline
}

// NewGuardService creates a new guard service instance.
func NewGuardService(
	cfg *config.Config,
	logger ports.Logger,
	positions ports.PositionSource,
	balances ports.BalanceSource,
	gateway ports.OrderGateway,
	buyRepo ports.BuyOrderRepository,
	stopRepo ports.StopRepository,
	pipeline *checks.Pipeline,
) (*GuardService, error) {
	if cfg == nil || logger == nil || positions == nil || balances == nil ||
		gateway == nil || buyRepo == nil || stopRepo == nil || pipeline == nil {
		return nil, fmt.Errorf("missing required dependencies for GuardService")
	}
	if cfg.SettlementCoin == "" {
		return nil, fmt.Errorf("configuration SettlementCoin must be set")
	}

	return &GuardService{
		cfg:       cfg,
		logger:    logger,
		positions: positions,
		balances:  balances,
		gateway:   gateway,
		buyRepo:   buyRepo,
		stopRepo:  stopRepo,
		pipeline:  pipeline,
	}, nil
}

// PlaceBuyOrder persists the buy order, runs every applicable trading check
// against a fresh sandbox projection and submits the order to the exchange
// only when all of them pass. A rejected order is marked as such and
// surfaced as a RejectedError.
func (s *GuardService) PlaceBuyOrder(ctx context.Context, order *domain.BuyOrder) (*ports.OrderResponse, error) {
	if order.ID == 0 {
		order.Status = domain.OrderStatusActive
		id, err := s.buyRepo.CreateBuyOrder(ctx, order)
		if err != nil {
			return nil, fmt.Errorf("persisting buy order for %s: %w", order.Symbol, err)
		}
		order.ID = id
	}

	intent := sandbox.FromBuyOrder(order)
	results, err := s.evaluate(ctx, intent)
	if err != nil {
		return nil, err
	}
	if !checks.AllPassed(results) {
		s.markBuyOrder(ctx, order.ID, domain.OrderStatusRejected)
		return nil, &RejectedError{Results: results}
	}

	resp, err := s.gateway.PlaceLimitOrder(ctx, order.Symbol, order.PositionSide, order.Price, order.Volume)
	if err != nil {
		return nil, fmt.Errorf("submitting buy order %d: %w", order.ID, err)
	}
	s.markBuyOrder(ctx, order.ID, domain.OrderStatusPlaced)

	s.logger.Info(ctx, "buy order passed all checks and was submitted", map[string]interface{}{
		"orderId": order.ID, "symbol": order.Symbol, "side": string(order.PositionSide),
		"price": order.Price.String(), "volume": order.Volume.String(), "exchangeOrderId": resp.OrderID,
	})
	return resp, nil
}

// PlaceStop persists the stop, runs the checks and submits a stop-market
// order to the exchange only when all of them pass.
func (s *GuardService) PlaceStop(ctx context.Context, stop *domain.Stop) (*ports.OrderResponse, error) {
	if stop.ID == 0 {
		stop.Status = domain.OrderStatusActive
		id, err := s.stopRepo.CreateStop(ctx, stop)
		if err != nil {
			return nil, fmt.Errorf("persisting stop for %s: %w", stop.Symbol, err)
		}
		stop.ID = id
	}

	intent := sandbox.FromStop(stop)
	results, err := s.evaluate(ctx, intent)
	if err != nil {
		return nil, err
	}
	if !checks.AllPassed(results) {
		s.markStop(ctx, stop.ID, domain.OrderStatusRejected)
		return nil, &RejectedError{Results: results}
	}

	resp, err := s.gateway.PlaceStopOrder(ctx, stop.Symbol, stop.PositionSide, stop.TriggerPrice, stop.Volume)
	if err != nil {
		return nil, fmt.Errorf("submitting stop %d: %w", stop.ID, err)
	}
	s.markStop(ctx, stop.ID, domain.OrderStatusPlaced)

	s.logger.Info(ctx, "stop passed all checks and was submitted", map[string]interface{}{
		"stopId": stop.ID, "symbol": stop.Symbol, "side": string(stop.PositionSide),
		"triggerPrice": stop.TriggerPrice.String(), "volume": stop.Volume.String(), "exchangeOrderId": resp.OrderID,
	})
	return resp, nil
}

// ResubmitActiveOrders re-verifies every persisted order still in the
// active state, typically after a restart. Rejections are terminal for the
// order in question but do not abort the sweep.
func (s *GuardService) ResubmitActiveOrders(ctx context.Context) error {
	buyOrders, err := s.buyRepo.FindActiveBuyOrders(ctx, s.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("loading active buy orders: %w", err)
	}
	stops, err := s.stopRepo.FindActiveStops(ctx, s.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("loading active stops: %w", err)
	}

	for _, order := range buyOrders {
		if _, err := s.PlaceBuyOrder(ctx, order); err != nil {
			if errors.Is(err, ErrChecksRejected) {
				s.logger.Warn(ctx, "active buy order rejected on re-verification", map[string]interface{}{
					"orderId": order.ID, "symbol": order.Symbol, "error": err.Error(),
				})
				continue
			}
			return err
		}
	}
	for _, stop := range stops {
		if _, err := s.PlaceStop(ctx, stop); err != nil {
			if errors.Is(err, ErrChecksRejected) {
				s.logger.Warn(ctx, "active stop rejected on re-verification", map[string]interface{}{
					"stopId": stop.ID, "symbol": stop.Symbol, "error": err.Error(),
				})
				continue
			}
			return err
		}
	}
	return nil
}

// evaluate runs one full check cycle for the intent against a context built
// from the live ticker. The context lives exactly as long as the cycle.
func (s *GuardService) evaluate(ctx context.Context, intent sandbox.Intent) ([]checks.Result, error) {
	ticker, err := s.positions.Ticker(ctx, intent.Symbol)
	if err != nil {
		return nil, fmt.Errorf("resolving ticker for %s: %w", intent.Symbol, err)
	}

	tc := checks.NewContext(ticker, s.cfg.SettlementCoin, s.positions, s.balances).
		WithFallbackLeverage(s.cfg.Leverage)
	return s.pipeline.Run(ctx, intent, tc)
}

func (s *GuardService) markBuyOrder(ctx context.Context, id int64, status domain.OrderStatus) {
	if err := s.buyRepo.UpdateBuyOrderStatus(ctx, id, status); err != nil {
		s.logger.Warn(ctx, "failed to update buy order status", map[string]interface{}{
			"orderId": id, "status": string(status), "error": err.Error(),
		})
	}
}

func (s *GuardService) markStop(ctx context.Context, id int64, status domain.OrderStatus) {
	if err := s.stopRepo.UpdateStopStatus(ctx, id, status); err != nil {
		s.logger.Warn(ctx, "failed to update stop status", map[string]interface{}{
			"stopId": id, "status": string(status), "error": err.Error(),
		})
	}
}
