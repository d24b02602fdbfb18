// Package binanceclient adapts the Binance USDT-margined futures API to the
// ports the verification core consumes: positions, tickers, balances,
// symbol reference data and order placement.
package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Client implements ports.PositionSource, ports.BalanceSource,
// ports.SymbolSource and ports.OrderGateway using the go-binance library.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger

	mu      sync.RWMutex
	symbols map[string]domain.Symbol // exchange-info cache, keyed by name
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using global futures.UseTestnet
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		symbols:       make(map[string]domain.Symbol),
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		// Map specific Binance error codes to custom errors
		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -2010: // New order rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -2013: // Order does not exist
			mappedErr = ports.ErrOrderNotFound
		case -2014, -2015: // API-key format invalid / invalid key, IP or permissions
			mappedErr = ports.ErrAuthenticationFailed
		case -2019: // Margin is insufficient
			mappedErr = ports.ErrInsufficientFunds
		case -3005: // Insufficient balance
			mappedErr = ports.ErrInsufficientFunds
		case -4044: // Position not found
			mappedErr = ports.ErrPositionNotFound
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// --- ports.PositionSource ---

// GetPosition retrieves the open position for a symbol and side.
// Returns nil, nil when no position is open on that side.
func (c *Client) GetPosition(ctx context.Context, symbol string, side domain.Side) (*domain.Position, error) {
	op := "GetPosition"
	risks, err := c.futuresClient.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	positions, err := c.parsePositions(risks)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	for _, pos := range positions {
		if pos.Side() == side {
			return pos, nil
		}
	}
	return nil, nil
}

// GetAllPositions retrieves every open position grouped by symbol, in
// exchange response order, with opposite sides linked as hedges.
func (c *Client) GetAllPositions(ctx context.Context) (map[string][]*domain.Position, error) {
	op := "GetAllPositions"
	risks, err := c.futuresClient.NewGetPositionRiskService().Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	bySymbol := make(map[string][]*futures.PositionRisk)
	var order []string
	for _, risk := range risks {
		if _, seen := bySymbol[risk.Symbol]; !seen {
			order = append(order, risk.Symbol)
		}
		bySymbol[risk.Symbol] = append(bySymbol[risk.Symbol], risk)
	}

	result := make(map[string][]*domain.Position, len(order))
	for _, symbol := range order {
		positions, err := c.parsePositions(bySymbol[symbol])
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(positions) > 0 {
			result[symbol] = positions
		}
	}
	return result, nil
}

// Ticker retrieves the current mark, index and last prices for a symbol.
func (c *Client) Ticker(ctx context.Context, symbol string) (domain.Ticker, error) {
	op := "Ticker"
	premiums, err := c.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return domain.Ticker{}, c.handleError(ctx, err, op)
	}
	if len(premiums) == 0 {
		return domain.Ticker{}, c.handleError(ctx, fmt.Errorf("no premium index returned for %s", symbol), op)
	}

	mark, err := domain.NewPriceFromString(premiums[0].MarkPrice)
	if err != nil {
		return domain.Ticker{}, c.handleError(ctx, err, op)
	}
	index, err := domain.NewPriceFromString(premiums[0].IndexPrice)
	if err != nil {
		return domain.Ticker{}, c.handleError(ctx, err, op)
	}

	ticker := domain.Ticker{Symbol: symbol, MarkPrice: mark, IndexPrice: index}

	prices, err := c.futuresClient.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return domain.Ticker{}, c.handleError(ctx, err, op)
	}
	if len(prices) > 0 {
		last, err := domain.NewPriceFromString(prices[0].Price)
		if err != nil {
			return domain.Ticker{}, c.handleError(ctx, err, op)
		}
		ticker.LastPrice = last
	}

	return ticker, nil
}

// parsePositions converts exchange position-risk rows into domain
// positions, skipping flat sides and linking opposite sides together.
func (c *Client) parsePositions(risks []*futures.PositionRisk) ([]*domain.Position, error) {
	var positions []*domain.Position
	for _, risk := range risks {
		pos, err := c.parsePosition(risk)
		if err != nil {
			return nil, err
		}
		if pos != nil {
			positions = append(positions, pos)
		}
	}
	if len(positions) == 2 && positions[0].Side() == positions[1].Side().Opposite() {
		first := positions[0].LinkOpposite(positions[1])
		second := positions[1].LinkOpposite(positions[0])
		positions = []*domain.Position{first, second}
	}
	return positions, nil
}

// parsePosition converts one position-risk row. Returns nil, nil for a flat
// side.
func (c *Client) parsePosition(risk *futures.PositionRisk) (*domain.Position, error) {
	amt, err := decimal.NewFromString(risk.PositionAmt)
	if err != nil {
		return nil, fmt.Errorf("parsing position amount %q for %s: %w", risk.PositionAmt, risk.Symbol, err)
	}
	if amt.IsZero() {
		return nil, nil
	}

	var side domain.Side
	switch risk.PositionSide {
	case "LONG":
		side = domain.SideBuy
	case "SHORT":
		side = domain.SideSell
	default: // one-way mode, infer from the amount's sign
		if amt.IsNegative() {
			side = domain.SideSell
		} else {
			side = domain.SideBuy
		}
	}

	entry, err := domain.NewPriceFromString(risk.EntryPrice)
	if err != nil {
		return nil, fmt.Errorf("parsing entry price for %s: %w", risk.Symbol, err)
	}
	liq, err := domain.NewPriceFromString(risk.LiquidationPrice)
	if err != nil {
		return nil, fmt.Errorf("parsing liquidation price for %s: %w", risk.Symbol, err)
	}
	pnl, err := domain.NewCoinAmountFromString(risk.UnRealizedProfit)
	if err != nil {
		return nil, fmt.Errorf("parsing unrealised pnl for %s: %w", risk.Symbol, err)
	}

	leverage := 0
	if risk.Leverage != "" {
		lev, err := decimal.NewFromString(risk.Leverage)
		if err != nil {
			return nil, fmt.Errorf("parsing leverage for %s: %w", risk.Symbol, err)
		}
		leverage = int(lev.IntPart())
	}

	size := amt.Abs()
	value := entry.Decimal().Mul(size)

	margin := decimal.Zero
	if risk.IsolatedMargin != "" {
		margin, err = decimal.NewFromString(risk.IsolatedMargin)
		if err != nil {
			return nil, fmt.Errorf("parsing isolated margin for %s: %w", risk.Symbol, err)
		}
	}
	if margin.IsZero() && leverage > 0 {
		// Cross-margin rows report no isolated margin; fall back to the
		// notional/leverage relationship.
		margin = value.Div(decimal.NewFromInt(int64(leverage)))
	}

	return domain.NewPosition(domain.PositionParams{
		Side:             side,
		Symbol:           domain.Symbol{Name: risk.Symbol},
		EntryPrice:       entry,
		Size:             domain.NewCoinAmount(size),
		PositionValue:    domain.NewCoinAmount(value),
		LiquidationPrice: liq,
		UnrealisedPnl:    pnl,
		InitialMargin:    domain.NewCoinAmount(margin),
		Leverage:         leverage,
	})
}

// --- ports.BalanceSource ---

// GetContractWalletBalance retrieves the futures wallet balance for a coin.
func (c *Client) GetContractWalletBalance(ctx context.Context, coin string) (ports.WalletBalance, error) {
	op := "GetContractWalletBalance"
	balances, err := c.futuresClient.NewGetBalanceService().Do(ctx)
	if err != nil {
		return ports.WalletBalance{}, c.handleError(ctx, err, op)
	}

	for _, b := range balances {
		if b.Asset != coin {
			continue
		}
		total, err := domain.NewCoinAmountFromString(b.Balance)
		if err != nil {
			return ports.WalletBalance{}, c.handleError(ctx, err, op)
		}
		available, err := domain.NewCoinAmountFromString(b.AvailableBalance)
		if err != nil {
			return ports.WalletBalance{}, c.handleError(ctx, err, op)
		}
		free, err := domain.NewCoinAmountFromString(b.CrossWalletBalance)
		if err != nil {
			return ports.WalletBalance{}, c.handleError(ctx, err, op)
		}
		if free.IsZero() {
			free = total
		}
		return ports.WalletBalance{Coin: coin, Available: available, Total: total, Free: free}, nil
	}

	return ports.WalletBalance{}, c.handleError(ctx, fmt.Errorf("no %s balance in futures wallet: %w", coin, ports.ErrNotFound), op)
}

// --- ports.SymbolSource ---

// GetSymbol retrieves the reference data for a symbol name, fetching and
// caching the full exchange info on first use.
func (c *Client) GetSymbol(ctx context.Context, name string) (domain.Symbol, error) {
	op := "GetSymbol"

	c.mu.RLock()
	if sym, ok := c.symbols[name]; ok {
		c.mu.RUnlock()
		return sym, nil
	}
	c.mu.RUnlock()

	info, err := c.futuresClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return domain.Symbol{}, c.handleError(ctx, err, op)
	}

	c.mu.Lock()
	for i := range info.Symbols {
		s := &info.Symbols[i]
		sym := domain.Symbol{
			Name:           s.Symbol,
			PricePrecision: int32(s.PricePrecision),
			QtyPrecision:   int32(s.QuantityPrecision),
			SettlementCoin: s.QuoteAsset,
		}
		if f := s.PriceFilter(); f != nil {
			if tick, err := domain.NewPriceFromString(f.TickSize); err == nil {
				sym.TickSize = tick
			}
		}
		if f := s.LotSizeFilter(); f != nil {
			if minQty, err := domain.NewCoinAmountFromString(f.MinQuantity); err == nil {
				sym.MinOrderQty = minQty
			}
		}
		c.symbols[s.Symbol] = sym
	}
	sym, ok := c.symbols[name]
	c.mu.Unlock()

	if !ok {
		return domain.Symbol{}, fmt.Errorf("%s: %w", name, ports.ErrSymbolNotFound)
	}
	return sym, nil
}

// --- ports.OrderGateway ---

// PlaceLimitOrder places a GTC limit order adding exposure on a side.
func (c *Client) PlaceLimitOrder(ctx context.Context, symbol string, side domain.Side, price domain.Price, volume domain.CoinAmount) (*ports.OrderResponse, error) {
	op := "PlaceLimitOrder"
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(orderSide(side)).
		PositionSide(positionSide(side)).
		Type(futures.OrderTypeLimit).
		TimeInForce(futures.TimeInForceTypeGTC).
		Price(price.String()).
		Quantity(volume.String()).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	c.logger.Info(ctx, "limit order placed", map[string]interface{}{
		"symbol": symbol, "side": string(side), "price": price.String(), "volume": volume.String(), "orderId": order.OrderID,
	})
	return orderResponse(order, side)
}

// PlaceStopOrder places a stop-market order reducing exposure on a side.
// The exchange executes it on the opposite order side of the position.
func (c *Client) PlaceStopOrder(ctx context.Context, symbol string, side domain.Side, triggerPrice domain.Price, volume domain.CoinAmount) (*ports.OrderResponse, error) {
	op := "PlaceStopOrder"
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(orderSide(side.Opposite())).
		PositionSide(positionSide(side)).
		Type(futures.OrderTypeStopMarket).
		StopPrice(triggerPrice.String()).
		Quantity(volume.String()).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	c.logger.Info(ctx, "stop order placed", map[string]interface{}{
		"symbol": symbol, "side": string(side), "triggerPrice": triggerPrice.String(), "volume": volume.String(), "orderId": order.OrderID,
	})
	return orderResponse(order, side)
}

func orderSide(side domain.Side) futures.SideType {
	if side.IsLong() {
		return futures.SideTypeBuy
	}
	return futures.SideTypeSell
}

func positionSide(side domain.Side) futures.PositionSideType {
	if side.IsLong() {
		return futures.PositionSideTypeLong
	}
	return futures.PositionSideTypeShort
}

func orderResponse(order *futures.CreateOrderResponse, side domain.Side) (*ports.OrderResponse, error) {
	price, err := domain.NewPriceFromString(orEmptyZero(order.Price))
	if err != nil {
		return nil, fmt.Errorf("parsing order price: %w", err)
	}
	avgPrice, err := domain.NewPriceFromString(orEmptyZero(order.AvgPrice))
	if err != nil {
		return nil, fmt.Errorf("parsing order avg price: %w", err)
	}
	origQty, err := domain.NewCoinAmountFromString(orEmptyZero(order.OrigQuantity))
	if err != nil {
		return nil, fmt.Errorf("parsing order quantity: %w", err)
	}
	executed, err := domain.NewCoinAmountFromString(orEmptyZero(order.ExecutedQuantity))
	if err != nil {
		return nil, fmt.Errorf("parsing executed quantity: %w", err)
	}

	return &ports.OrderResponse{
		OrderID:       order.OrderID,
		Symbol:        order.Symbol,
		ClientOrderID: order.ClientOrderID,
		Price:         price,
		AvgPrice:      avgPrice,
		OrigQuantity:  origQty,
		ExecutedQty:   executed,
		Status:        string(order.Status),
		Type:          string(order.Type),
		Side:          side,
	}, nil
}

func orEmptyZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
