package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hedgeguard/internal/adapters/logger" // Import the logger package for LogLevel
	"hedgeguard/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Trading Parameters
	Symbol         string
	SettlementCoin string // Coin margins and balances are denominated in
	Leverage       int    // Leverage assumed for positions freshly opened in sandbox projections

	// Safety Parameters
	SafeLiquidationDistance float64 // Minimum mark-to-liquidation distance, in percent
	MaxPnlFixations         int     // Profit fixations allowed per position
	FixationMaxTries        int     // Retry budget for deriving the fixation count

	// Failure Reporting
	ThrottlePeriod     time.Duration // Window for suppressing repeated failure reports
	ThrottleMaxReports int           // Reports accepted per key per window

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	if cfg.APIKey == "" {
		errs = append(errs, "BINANCE_API_KEY must be set")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, "BINANCE_API_SECRET must be set")
	}

	// Trading Parameters
	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.SettlementCoin = getEnv("SETTLEMENT_COIN", "USDT")
	if cfg.SettlementCoin == "" {
		errs = append(errs, "SETTLEMENT_COIN must be set")
	}

	cfg.Leverage, err = getEnvAsIntRequired("LEVERAGE", domain.DefaultLeverage)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVERAGE: %v", err))
	} else if cfg.Leverage <= 0 {
		errs = append(errs, "LEVERAGE must be positive")
	}

	// Safety Parameters
	cfg.SafeLiquidationDistance, err = getEnvAsFloatRequired("SAFE_LIQUIDATION_DISTANCE_PERCENT", 2.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SAFE_LIQUIDATION_DISTANCE_PERCENT: %v", err))
	} else if cfg.SafeLiquidationDistance <= 0 || cfg.SafeLiquidationDistance >= 100 {
		errs = append(errs, "SAFE_LIQUIDATION_DISTANCE_PERCENT must be between 0 and 100 (exclusive)")
	}

	cfg.MaxPnlFixations, err = getEnvAsIntRequired("MAX_PNL_FIXATIONS", 3)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_PNL_FIXATIONS: %v", err))
	} else if cfg.MaxPnlFixations <= 0 {
		errs = append(errs, "MAX_PNL_FIXATIONS must be positive")
	}

	cfg.FixationMaxTries = getEnvAsInt("FIXATION_MAX_TRIES", 3)
	if cfg.FixationMaxTries <= 0 {
		errs = append(errs, "FIXATION_MAX_TRIES must be positive")
	}

	// Failure Reporting
	throttlePeriodSeconds := getEnvAsInt("THROTTLE_PERIOD_SECONDS", 60)
	if throttlePeriodSeconds <= 0 {
		errs = append(errs, "THROTTLE_PERIOD_SECONDS must be positive")
	}
	cfg.ThrottlePeriod = time.Duration(throttlePeriodSeconds) * time.Second

	cfg.ThrottleMaxReports = getEnvAsInt("THROTTLE_MAX_REPORTS", 1)
	if cfg.ThrottleMaxReports <= 0 {
		errs = append(errs, "THROTTLE_MAX_REPORTS must be positive")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/hedgeguard.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
