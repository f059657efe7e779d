package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"priceActionBot/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (public kline endpoints work with empty keys)
	APIKey    string
	SecretKey string

	// Market data
	Interval     string
	WarmupBars   int
	PollInterval time.Duration

	// Accounting
	InitialEquity float64

	// Paths
	DBPath       string
	TelemetryDir string
	AssetsFile   string

	// Risk floors, in R units
	MaxDrawdownR  float64
	MaxDailyLossR float64
	MaxLossStreak int

	// Observability
	LogLevel    zerolog.Level
	LogPretty   bool
	MetricsAddr string
}

// LoadConfig loads configuration from environment variables (.env file).
// All validation problems are collected and reported together.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")

	cfg.Interval = getEnv("INTERVAL", "5m")
	if cfg.Interval == "" {
		errs = append(errs, "INTERVAL must be set")
	}

	cfg.WarmupBars = getEnvAsInt("WARMUP_BARS", 100)
	if cfg.WarmupBars <= 0 {
		errs = append(errs, "WARMUP_BARS must be positive")
	}

	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 5)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	var err error
	cfg.InitialEquity, err = getEnvAsFloatRequired("INITIAL_EQUITY", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_EQUITY: %v", err))
	} else if cfg.InitialEquity <= 0 {
		errs = append(errs, "INITIAL_EQUITY must be positive")
	}

	cfg.DBPath = getEnv("DB_PATH", "./data/price_action_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.TelemetryDir = getEnv("TELEMETRY_DIR", "./data/telemetry")
	cfg.AssetsFile = getEnv("ASSETS_FILE", "./config/assets.yaml")

	cfg.MaxDrawdownR, err = getEnvAsFloatRequired("MAX_DRAWDOWN_R", 15.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_DRAWDOWN_R: %v", err))
	} else if cfg.MaxDrawdownR <= 0 {
		errs = append(errs, "MAX_DRAWDOWN_R must be positive")
	}
	cfg.MaxDailyLossR, err = getEnvAsFloatRequired("MAX_DAILY_LOSS_R", 12.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_DAILY_LOSS_R: %v", err))
	} else if cfg.MaxDailyLossR <= 0 {
		errs = append(errs, "MAX_DAILY_LOSS_R must be positive")
	}
	cfg.MaxLossStreak = getEnvAsInt("MAX_LOSS_STREAK", 8)
	if cfg.MaxLossStreak <= 0 {
		errs = append(errs, "MAX_LOSS_STREAK must be positive")
	}

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogPretty = getEnvAsBool("LOG_PRETTY", false)
	cfg.MetricsAddr = getEnv("METRICS_ADDR", ":9090")

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
		return defaultValue
	}
	return value
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
