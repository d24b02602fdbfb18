package checks

import (
	"context"
	"fmt"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/ports"
	"hedgeguard/internal/sandbox"
)

// Context is the per-evaluation-cycle aggregate handed to every check. It
// carries the current ticker and lazily resolves the current position and
// sandbox state, each exactly once per cycle. A Context must not be shared
// across symbols or concurrent evaluations without ResetState.
type Context struct {
	ticker         domain.Ticker
	settlementCoin string
	positions      ports.PositionSource
	balances       ports.BalanceSource

	throttlingDisabled bool
	fallbackLeverage   int

	positionsBySide map[domain.Side]*domain.Position
	sandboxBuilt    bool
	sandboxState    sandbox.State
}

// NewContext builds a check context for one evaluation cycle. The
// settlement coin names the wallet the sandbox's free balance is read from.
func NewContext(ticker domain.Ticker, settlementCoin string, positions ports.PositionSource, balances ports.BalanceSource) *Context {
	return &Context{
		ticker:          ticker,
		settlementCoin:  settlementCoin,
		positions:       positions,
		balances:        balances,
		positionsBySide: make(map[domain.Side]*domain.Position),
	}
}

// WithoutThrottling marks the context as running inside a sandbox
// evaluation: failure reporting must not consume the throttle limiter
// again. Returns the context for chaining.
func (c *Context) WithoutThrottling() *Context {
	c.throttlingDisabled = true
	return c
}

// ThrottlingDisabled reports whether failure reporting should bypass the
// limiter for this cycle.
func (c *Context) ThrottlingDisabled() bool { return c.throttlingDisabled }

// WithFallbackLeverage sets the leverage the sandbox assumes for positions
// freshly opened in a projection, typically the configured account
// leverage. Returns the context for chaining.
func (c *Context) WithFallbackLeverage(leverage int) *Context {
	c.fallbackLeverage = leverage
	return c
}

// Ticker returns the market prices the cycle was started with.
func (c *Context) Ticker() domain.Ticker { return c.ticker }

// CurrentPosition resolves the open position for the given side, fetching
// it at most once per cycle. A flat side memoizes as nil.
func (c *Context) CurrentPosition(ctx context.Context, side domain.Side) (*domain.Position, error) {
	if pos, ok := c.positionsBySide[side]; ok {
		return pos, nil
	}
	pos, err := c.positions.GetPosition(ctx, c.ticker.Symbol, side)
	if err != nil {
		return nil, fmt.Errorf("resolving current %s position for %s: %w", side, c.ticker.Symbol, err)
	}
	c.positionsBySide[side] = pos
	return pos, nil
}

// SandboxState builds the sandbox projection of the current account state,
// at most once per cycle: both sides' positions linked as opposites plus
// the free settlement-coin balance.
func (c *Context) SandboxState(ctx context.Context) (sandbox.State, error) {
	if c.sandboxBuilt {
		return c.sandboxState, nil
	}

	long, err := c.CurrentPosition(ctx, domain.SideBuy)
	if err != nil {
		return sandbox.State{}, err
	}
	short, err := c.CurrentPosition(ctx, domain.SideSell)
	if err != nil {
		return sandbox.State{}, err
	}
	if long != nil && short != nil {
		linkedLong := long.LinkOpposite(short)
		short = short.LinkOpposite(long)
		long = linkedLong
	}

	balance, err := c.balances.GetContractWalletBalance(ctx, c.settlementCoin)
	if err != nil {
		return sandbox.State{}, fmt.Errorf("resolving %s wallet balance: %w", c.settlementCoin, err)
	}

	c.sandboxState = sandbox.NewState(c.ticker, balance.Free, long, short).
		WithFallbackLeverage(c.fallbackLeverage)
	c.sandboxBuilt = true
	return c.sandboxState, nil
}

// ResetState clears the memoized position and sandbox state, forcing
// recomputation. Required when a context is reused for another symbol or
// evaluation cycle.
func (c *Context) ResetState() {
	c.positionsBySide = make(map[domain.Side]*domain.Position)
	c.sandboxBuilt = false
	c.sandboxState = sandbox.State{}
}
