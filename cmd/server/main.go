// Package main runs the analysis HTTP API:
// - GET  /v1/tokens/:address/{trend,confirmation,movements,momentum}
// - POST /v1/trend/batch
// - GET  /health, /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"virtuoso-gem-finder/internal/api"
	"virtuoso-gem-finder/internal/app"
	"virtuoso-gem-finder/internal/config"
)

func main() {
	cfg := config.Load()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "HTTP listen address")
	source := flag.String("source", app.SourceBirdeye, "Market data source (birdeye, store)")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (tokens, known accounts)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (candles, trader snapshots)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, closeStores, err := app.OpenStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer closeStores()

	known, err := app.LoadKnownAccounts(ctx, stores.KnownAccounts)
	if err != nil {
		logger.Fatalf("Failed to load known accounts: %v", err)
	}
	logger.Printf("Loaded %d known accounts", known.Len())

	stack, err := app.BuildProvider(ctx, cfg, *source, stores, logger)
	if err != nil {
		logger.Fatalf("Failed to build provider: %v", err)
	}
	defer stack.Close()

	engineLogger := log.New(os.Stdout, "[engine] ", log.LstdFlags|log.Lshortfile)
	eng := app.NewEngine(cfg, stack.Provider, stores, known, engineLogger)

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           api.NewRouter(api.NewHandler(eng)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s (source=%s)", *listenAddr, *source)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	go func() {
		// Second signal forces exit
		sig := <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Graceful shutdown failed: %v", err)
	}
	logger.Println("Shutdown complete")
}
