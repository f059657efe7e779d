package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"priceActionBot/config"
	"priceActionBot/internal/adapters/binancefeed"
	"priceActionBot/internal/adapters/logger"
	"priceActionBot/internal/utils"
)

func main() {
	symbolFlag := flag.String("symbol", "BTCUSDT", "asset symbol to fetch")
	intervalFlag := flag.String("interval", "5m", "kline interval")
	monthsFlag := flag.Int("months", 3, "how many months back to fetch")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewWithWriter(cfg.LogLevel, os.Stderr, true)
	ctx := context.Background()

	feed, err := binancefeed.New(binancefeed.Config{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		Logger:    appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize market feed: %v", err)
	}

	end := time.Now()
	start := end.AddDate(0, -*monthsFlag, 0)

	appLogger.Info(ctx, "fetching klines", map[string]interface{}{
		"symbol": *symbolFlag, "interval": *intervalFlag,
		"start": start.Format(time.RFC3339), "end": end.Format(time.RFC3339),
	})
	bars, err := feed.HistoricalRange(ctx, *symbolFlag, *intervalFlag, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "fetched klines", map[string]interface{}{"count": len(bars)})

	if err := os.MkdirAll("data", 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}
	filename := fmt.Sprintf("data/%s_%s_%s_to_%s.csv", *symbolFlag, *intervalFlag,
		start.Format("20060102"), end.Format("20060102"))
	if err := utils.WriteBarsToCSV(bars, filename); err != nil {
		appLogger.Error(ctx, err, "error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "saved", map[string]interface{}{"filename": filename})
}
