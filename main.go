package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"hedgeguard/config"
	"hedgeguard/internal/adapters/binanceclient"
	"hedgeguard/internal/adapters/logger"
	"hedgeguard/internal/adapters/sqlite"
	"hedgeguard/internal/app"
	"hedgeguard/internal/checks"
	"hedgeguard/internal/domain"
	"hedgeguard/internal/throttle"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(context.Background(), "Database repository initialized")

	// 4. Initialize Exchange Client (Binance Adapter)
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
	appLogger.Info(context.Background(), "Binance client initialized")

	// 5. Resolve Trading Symbol
	symbol, err := binanceClient.GetSymbol(context.Background(), cfg.Symbol)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to resolve trading symbol", map[string]interface{}{"symbol": cfg.Symbol})
		log.Fatalf("FATAL: Failed to resolve trading symbol %s: %v", cfg.Symbol, err)
	}
	appLogger.Info(context.Background(), "Trading symbol resolved", map[string]interface{}{
		"symbol":      symbol.Name,
		"tickSize":    symbol.TickSize.String(),
		"minOrderQty": symbol.MinOrderQty.String(),
	})

	// 6. Initialize Check Pipeline
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
		checks.NewPnlFixationCheck(repo, cfg.MaxPnlFixations, cfg.FixationMaxTries),
	)
	appLogger.Info(context.Background(), "Check pipeline initialized", map[string]interface{}{
		"safeLiquidationDistance": cfg.SafeLiquidationDistance,
		"maxPnlFixations":         cfg.MaxPnlFixations,
	})

	// 7. Initialize Application Service
	guardService, err := app.NewGuardService(
		cfg,
		appLogger,
		binanceClient, // Pass the concrete implementation, service expects the interface
		binanceClient,
		binanceClient,
		repo,
		repo,
		pipeline,
	)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize guard service")
		log.Fatalf("FATAL: Failed to initialize guard service: %v", err)
	}
	appLogger.Info(context.Background(), "Guard service initialized")

	// 8. Re-verify Orders Left Active From a Previous Run
	if err := guardService.ResubmitActiveOrders(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Re-verification of active orders exited with error")
		log.Fatalf("FATAL: Re-verification of active orders exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
