// Package main runs one analysis from the command line and prints it as JSON, Markdown or CSV.
//
// Usage:
//
//	analyze -mode trend <mint>
//	analyze -mode batch <mint> <mint> ...
//	analyze -mode momentum -long 24h -short 6h <mint>
//	analyze -mode batch -format markdown <mint> <mint> ...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"virtuoso-gem-finder/internal/app"
	"virtuoso-gem-finder/internal/config"
	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/engine"
	"virtuoso-gem-finder/internal/reporting"
)

func main() {
	cfg := config.Load()

	source := flag.String("source", app.SourceBirdeye, "Market data source (birdeye, store)")
	mode := flag.String("mode", "trend", "Analysis: trend, confirm, batch, movements, momentum")
	window := flag.String("window", string(domain.Window24h), "Movement window (movements mode)")
	long := flag.String("long", string(domain.Window24h), "Long window (momentum mode)")
	short := flag.String("short", string(domain.Window6h), "Short window (momentum mode)")
	ageDays := flag.Float64("age-days", -1, "Token age override in days (negative: resolve automatically)")
	format := flag.String("format", "json", "Output format: json, markdown, csv (csv: batch mode only)")
	refresh := flag.Bool("refresh", false, "Drop cached market data for the tokens first")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.Parse()

	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags)

	switch *format {
	case "json", "markdown":
	case "csv":
		if *mode != "batch" {
			logger.Fatal("-format csv requires -mode batch")
		}
	default:
		logger.Fatalf("Unknown format %q", *format)
	}

	tokens := flag.Args()
	if len(tokens) == 0 {
		logger.Fatal("At least one token address is required")
	}
	for _, t := range tokens {
		if err := domain.ValidateAddress(t); err != nil {
			logger.Fatalf("Invalid token %q: %v", t, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := app.OpenStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to open stores: %v", err)
	}
	defer closeStores()

	known, err := app.LoadKnownAccounts(ctx, stores.KnownAccounts)
	if err != nil {
		logger.Fatalf("Failed to load known accounts: %v", err)
	}

	stack, err := app.BuildProvider(ctx, cfg, *source, stores, logger)
	if err != nil {
		logger.Fatalf("Failed to build provider: %v", err)
	}
	defer stack.Close()

	if *refresh && stack.Cache != nil {
		for _, t := range tokens {
			if err := stack.Cache.Invalidate(ctx, t); err != nil {
				logger.Printf("Cache invalidation for %s failed: %v", t, err)
			}
		}
	}

	eng := app.NewEngine(cfg, stack.Provider, stores, known, logger)
	now := eng.Now()

	var age *float64
	if *ageDays >= 0 {
		age = ageDays
	}

	var (
		out      interface{}
		markdown string
	)
	switch *mode {
	case "trend":
		analysis := eng.AnalyzeTrend(ctx, tokens[0], now, age)
		out = analysis
		markdown = reporting.RenderMarkdown(singleReport(cfg, analysis, now))
	case "confirm":
		analysis, confirmed := eng.ConfirmUptrend(ctx, tokens[0], now, age)
		out = map[string]interface{}{"confirmed": confirmed, "analysis": analysis}
		markdown = reporting.RenderMarkdown(singleReport(cfg, analysis, now))
	case "batch":
		result := eng.AnalyzeTrendBatch(ctx, tokens, now)
		report := reporting.BuildTrendReport(result, cfg.Trend, now)
		if *format == "csv" {
			fmt.Print(reporting.RenderCSV(report))
			return
		}
		out = result
		markdown = reporting.RenderMarkdown(report)
	case "movements":
		w := parseWindow(logger, *window)
		analysis := eng.AnalyzeMovements(ctx, tokens[0], w)
		out = analysis
		markdown = reporting.RenderMovementMarkdown(analysis)
	case "momentum":
		lw, sw := parseWindow(logger, *long), parseWindow(logger, *short)
		if sw.Duration() >= lw.Duration() {
			logger.Fatalf("Short window %s must be shorter than long window %s", sw, lw)
		}
		report := eng.AnalyzeMomentum(ctx, tokens[0], lw, sw)
		out = report
		markdown = reporting.RenderMomentumMarkdown(tokens[0], report)
	default:
		logger.Fatalf("Unknown mode %q", *mode)
	}

	if *format == "markdown" {
		fmt.Print(markdown)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}

// singleReport wraps one analysis so it renders like a one-token batch.
func singleReport(cfg *config.Config, a domain.TrendAnalysis, now time.Time) *reporting.TrendReport {
	result := engine.BatchResult{RunID: uuid.New(), Results: map[string]domain.TrendAnalysis{a.Token: a}}
	return reporting.BuildTrendReport(result, cfg.Trend, now)
}

func parseWindow(logger *log.Logger, s string) domain.Window {
	w, err := domain.ParseWindow(s)
	if err != nil {
		logger.Fatalf("Invalid window %q: %v", s, err)
	}
	return w
}
