// Package main records live OHLCV bars from the Birdeye price stream into
// ClickHouse, so that analyses can later run with -source store.
//
// Usage:
//
//	record -timeframes 15m,1h,4h <mint> <mint> ...
//	record -postgres-dsn ... (records every registered token)
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"virtuoso-gem-finder/internal/app"
	"virtuoso-gem-finder/internal/config"
	"virtuoso-gem-finder/internal/provider/birdeye"
)

func main() {
	cfg := config.Load()

	timeframes := flag.String("timeframes", "15m,1h,4h", "Comma-separated timeframes to record")
	streamURL := flag.String("stream-url", cfg.BirdeyeStreamURL, "Birdeye WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (token registry)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (required)")
	statsInterval := flag.Duration("stats-interval", time.Minute, "Interval between progress logs")
	flag.Parse()

	logger := log.New(os.Stdout, "[record] ", log.LstdFlags|log.Lshortfile)

	if cfg.BirdeyeAPIKey == "" {
		logger.Fatal("BIRDEYE_API_KEY is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("-clickhouse-dsn is required")
	}
	tfs, err := app.ParseTimeframes(*timeframes)
	if err != nil {
		logger.Fatalf("Invalid -timeframes: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, closeStores, err := app.OpenStores(ctx, *postgresDSN, *clickhouseDSN, false)
	if err != nil {
		logger.Fatalf("Failed to open stores: %v", err)
	}
	defer closeStores()

	registry := stores.Tokens
	if *postgresDSN == "" {
		registry = nil
	}
	subs, err := app.StreamSubscriptions(ctx, flag.Args(), registry, tfs)
	if err != nil {
		logger.Fatalf("Failed to build subscriptions: %v", err)
	}

	streamCfg := birdeye.DefaultStreamConfig()
	streamCfg.URL = *streamURL
	stream := birdeye.NewStream(cfg.BirdeyeAPIKey, &streamCfg, stores.Candles, logger)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping stream...", sig)
		cancel()

		// Second signal forces exit
		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	go func() {
		ticker := time.NewTicker(*statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Printf("Recorded %d bars", stream.Written())
			}
		}
	}()

	logger.Printf("Recording %d feeds", len(subs))
	if err := stream.Run(ctx, subs); err != nil {
		logger.Fatalf("Stream failed: %v", err)
	}
	logger.Printf("Stopped after %d bars", stream.Written())
}
