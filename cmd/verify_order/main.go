// Command verify_order dry-runs the trading checks against a candidate
// order without ever submitting it: the full pipeline evaluates the order
// against live exchange state and prints every check's verdict.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"hedgeguard/config"
	"hedgeguard/internal/adapters/binanceclient"
	"hedgeguard/internal/adapters/logger"
	"hedgeguard/internal/checks"
	"hedgeguard/internal/domain"
	"hedgeguard/internal/sandbox"
	"hedgeguard/internal/throttle"
)

func main() {
	kind := flag.String("kind", "buy", "order kind: buy or stop")
	side := flag.String("side", "Buy", "position side: Buy or Sell")
	price := flag.String("price", "", "limit price for a buy, trigger price for a stop")
	volume := flag.String("volume", "", "order volume in base coin")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	intent, err := parseIntent(cfg.Symbol, *kind, *side, *price, *volume)
	if err != nil {
		log.Fatalf("FATAL: Invalid order arguments: %v", err)
	}

	// 4. Resolve Symbol and Market State
	ctx := context.Background()
	symbol, err := binanceClient.GetSymbol(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("FATAL: Failed to resolve trading symbol %s: %v", cfg.Symbol, err)
	}
	ticker, err := binanceClient.Ticker(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("FATAL: Failed to resolve ticker for %s: %v", cfg.Symbol, err)
	}

	// 5. Build and Run the Check Pipeline
	limiters := throttle.NewFactory(throttle.Config{
		Period:      cfg.ThrottlePeriod,
		MaxAttempts: cfg.ThrottleMaxReports,
	})
	reporter := checks.NewFailureReporter(limiters, logger.NewAlertSink(appLogger))
	pipeline := checks.NewPipeline(appLogger, reporter,
		checks.NewOrderVolumeCheck(symbol),
		checks.NewOrderAheadOfLiquidationCheck(),
		checks.NewFurtherLiquidationDistanceCheck(domain.NewPercentFromFloat(cfg.SafeLiquidationDistance)),
		checks.NewAvailableBalanceCheck(),
		checks.NewStopCloseCheck(),
	)

	tc := checks.NewContext(ticker, cfg.SettlementCoin, binanceClient, binanceClient).
		WithFallbackLeverage(cfg.Leverage)
	results, err := pipeline.Run(ctx, intent, tc)
	if err != nil {
		appLogger.Error(ctx, err, "Check pipeline exited with error")
		log.Fatalf("FATAL: Check pipeline exited with error: %v", err)
	}

	for _, r := range results {
		verdict := "PASS"
		if !r.Success() {
			verdict = fmt.Sprintf("FAIL (%s)", r.Reason())
		}
		fmt.Printf("%-30s %s: %s\n", r.Source(), verdict, r.Info())
	}
	if !checks.AllPassed(results) {
		os.Exit(1)
	}
	fmt.Println("order would be accepted")
}

func parseIntent(symbol, kind, side, price, volume string) (sandbox.Intent, error) {
	s := domain.Side(side)
	if !s.IsValid() {
		return sandbox.Intent{}, fmt.Errorf("side must be %q or %q", domain.SideBuy, domain.SideSell)
	}
	p, err := domain.NewPriceFromString(price)
	if err != nil {
		return sandbox.Intent{}, fmt.Errorf("parsing price: %w", err)
	}
	v, err := domain.NewCoinAmountFromString(volume)
	if err != nil {
		return sandbox.Intent{}, fmt.Errorf("parsing volume: %w", err)
	}

	switch kind {
	case string(sandbox.KindBuy):
		return sandbox.BuyIntent(symbol, s, p, v), nil
	case string(sandbox.KindStop):
		return sandbox.StopIntent(symbol, s, p, v), nil
	default:
		return sandbox.Intent{}, fmt.Errorf("kind must be %q or %q", sandbox.KindBuy, sandbox.KindStop)
	}
}
