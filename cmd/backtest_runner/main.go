package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"priceActionBot/config"
	"priceActionBot/internal/adapters/logger"
	"priceActionBot/internal/adapters/telemetry"
	"priceActionBot/internal/app"
	"priceActionBot/internal/domain"
	"priceActionBot/internal/risk"
	"priceActionBot/internal/utils"
)

func main() {
	symbolFlag := flag.String("symbol", "BTCUSDT", "asset symbol to backtest")
	csvFlag := flag.String("csv", "", "bar series CSV file (written by fetch_klines)")
	equityFlag := flag.Float64("equity", 10000, "starting equity")
	flag.Parse()

	if *csvFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: backtest_runner -symbol BTCUSDT -csv data/BTCUSDT_5m.csv")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewWithWriter(cfg.LogLevel, os.Stderr, true)
	ctx := context.Background()

	assets, err := config.LoadAssets(cfg.AssetsFile)
	if err != nil {
		log.Fatalf("FATAL: Failed to load asset configuration: %v", err)
	}
	var asset *domain.AssetConfig
	for i := range assets {
		if assets[i].Symbol == *symbolFlag {
			asset = &assets[i]
			break
		}
	}
	if asset == nil {
		log.Fatalf("FATAL: symbol %s not present in asset configuration", *symbolFlag)
	}

	bars, err := utils.ReadBarsFromCSV(*csvFlag)
	if err != nil {
		log.Fatalf("FATAL: Failed to load bars: %v", err)
	}
	appLogger.Info(ctx, "bars loaded", map[string]interface{}{"file": *csvFlag, "count": len(bars)})

	sink, err := telemetry.NewCSVSink(cfg.TelemetryDir)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize telemetry: %v", err)
	}
	defer sink.Close()

	guardCfg := risk.DefaultGuardConfig()
	guardCfg.MaxDrawdownR = cfg.MaxDrawdownR
	guardCfg.MaxDailyLossR = cfg.MaxDailyLossR
	guardCfg.MaxLossStreak = cfg.MaxLossStreak

	result, err := app.RunBacktest(ctx, app.RunnerConfig{
		Asset:         *asset,
		InitialEquity: *equityFlag,
		GuardConfig:   guardCfg,
		Telemetry:     sink,
		Logger:        appLogger,
	}, bars)
	if err != nil {
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	fmt.Printf("%s backtest over %d bars\n", result.Symbol, len(bars))
	fmt.Print(result.Summary.String())
	fmt.Printf("final equity: %.2f\n", result.FinalEquity)
}
