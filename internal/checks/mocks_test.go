package checks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"hedgeguard/internal/domain"
	"hedgeguard/internal/ports"
	"hedgeguard/internal/sandbox"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// mockPositionSource serves canned positions and tickers and counts calls.
type mockPositionSource struct {
	long  *domain.Position
	short *domain.Position
	err   error

	getPositionCalls int
}

func (m *mockPositionSource) GetPosition(ctx context.Context, symbol string, side domain.Side) (*domain.Position, error) {
	m.getPositionCalls++
	if m.err != nil {
		return nil, m.err
	}
	if side.IsLong() {
		return m.long, nil
	}
	return m.short, nil
}

func (m *mockPositionSource) GetAllPositions(ctx context.Context) (map[string][]*domain.Position, error) {
	return nil, nil
}

func (m *mockPositionSource) Ticker(ctx context.Context, symbol string) (domain.Ticker, error) {
	return domain.Ticker{Symbol: symbol}, nil
}

// mockBalanceSource serves one canned wallet balance.
type mockBalanceSource struct {
	free domain.CoinAmount
	err  error

	calls int
}

func (m *mockBalanceSource) GetContractWalletBalance(ctx context.Context, coin string) (ports.WalletBalance, error) {
	m.calls++
	if m.err != nil {
		return ports.WalletBalance{}, m.err
	}
	return ports.WalletBalance{Coin: coin, Free: m.free, Available: m.free, Total: m.free}, nil
}

// recordingAlertSink captures every report for assertions.
type recordingAlertSink struct {
	mu       sync.Mutex
	messages []string
	data     []map[string]interface{}
}

func (s *recordingAlertSink) Error(ctx context.Context, msg string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.data = append(s.data, data)
}

func (s *recordingAlertSink) Exception(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, err.Error())
	s.data = append(s.data, nil)
}

func (s *recordingAlertSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// stubCheck is a scriptable pipeline check.
type stubCheck struct {
	name        string
	supported   bool
	supportsErr error
	result      Result
	checkErr    error

	checked bool
}

func (c *stubCheck) Name() string { return c.name }

func (c *stubCheck) Supports(ctx context.Context, intent sandbox.Intent, tc *Context) (bool, error) {
	return c.supported, c.supportsErr
}

func (c *stubCheck) Check(ctx context.Context, intent sandbox.Intent, tc *Context) (Result, error) {
	c.checked = true
	return c.result, c.checkErr
}

func mustPrice(t *testing.T, s string) domain.Price {
	t.Helper()
	p, err := domain.NewPriceFromString(s)
	require.NoError(t, err)
	return p
}

func mustAmount(t *testing.T, s string) domain.CoinAmount {
	t.Helper()
	a, err := domain.NewCoinAmountFromString(s)
	require.NoError(t, err)
	return a
}

func buildPosition(t *testing.T, p domain.PositionParams) *domain.Position {
	t.Helper()
	pos, err := domain.NewPosition(p)
	require.NoError(t, err)
	return pos
}

func testTicker(t *testing.T, mark string) domain.Ticker {
	t.Helper()
	return domain.Ticker{Symbol: "BTCUSDT", MarkPrice: mustPrice(t, mark)}
}

// testContext builds a check context over canned positions and balance.
func testContext(t *testing.T, mark string, free string, long, short *domain.Position) *Context {
	t.Helper()
	positions := &mockPositionSource{long: long, short: short}
	balances := &mockBalanceSource{free: mustAmount(t, free)}
	return NewContext(testTicker(t, mark), "USDT", positions, balances)
}
