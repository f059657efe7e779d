package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"

	"priceActionBot/config"
	"priceActionBot/internal/adapters/binancefeed"
	"priceActionBot/internal/adapters/logger"
	"priceActionBot/internal/adapters/metrics"
	"priceActionBot/internal/adapters/sqlite"
	"priceActionBot/internal/adapters/telemetry"
	"priceActionBot/internal/app"
	"priceActionBot/internal/risk"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewWithWriter(cfg.LogLevel, os.Stderr, cfg.LogPretty)
	ctx := context.Background()
	appLogger.Info(ctx, "logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Load Asset Configuration
	assets, err := config.LoadAssets(cfg.AssetsFile)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: failed to load asset configuration")
		log.Fatalf("FATAL: Failed to load asset configuration: %v", err)
	}
	appLogger.Info(ctx, "asset configuration loaded", map[string]interface{}{"assets": len(assets)})

	// 4. Initialize State Store (Database Adapter)
	store, err := sqlite.NewStore(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: failed to initialize state store")
		log.Fatalf("FATAL: Failed to initialize state store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Error(ctx, err, "error closing state store")
		}
	}()

	// 5. Initialize Market Feed (Binance Adapter)
	feed, err := binancefeed.New(binancefeed.Config{
		APIKey:       cfg.APIKey,
		SecretKey:    cfg.SecretKey,
		Logger:       appLogger,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: failed to initialize market feed")
		log.Fatalf("FATAL: Failed to initialize market feed: %v", err)
	}

	// 6. Telemetry and Metrics
	sink, err := telemetry.NewCSVSink(cfg.TelemetryDir)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: failed to initialize telemetry")
		log.Fatalf("FATAL: Failed to initialize telemetry: %v", err)
	}
	defer sink.Close()

	m := metrics.New()

	guardCfg := risk.DefaultGuardConfig()
	guardCfg.MaxDrawdownR = cfg.MaxDrawdownR
	guardCfg.MaxDailyLossR = cfg.MaxDailyLossR
	guardCfg.MaxLossStreak = cfg.MaxLossStreak

	// 7. Initialize Application Service
	svc, err := app.NewService(app.ServiceConfig{
		Assets:        assets,
		Interval:      cfg.Interval,
		WarmupBars:    cfg.WarmupBars,
		InitialEquity: cfg.InitialEquity,
		GuardConfig:   guardCfg,
	}, feed, store, store, app.NullModel{}, sink, m, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: failed to initialize service")
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	// 8. Start the Service
	svcCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go metrics.Serve(svcCtx, cfg.MetricsAddr, appLogger)

	if err := svc.Start(svcCtx); err != nil {
		appLogger.Error(ctx, err, "service exited with error")
		log.Fatalf("FATAL: Service exited with error: %v", err)
	}

	appLogger.Info(ctx, "application finished gracefully")
}
