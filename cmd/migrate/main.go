// Package main applies the PostgreSQL and ClickHouse schemas and optionally
// seeds the token and known-account registries from a JSON file.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"virtuoso-gem-finder/internal/app"
	"virtuoso-gem-finder/internal/config"
	"virtuoso-gem-finder/internal/storage/migrations"
	"virtuoso-gem-finder/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	seedPath := flag.String("seed", "", "Optional JSON seed file with tokens and known accounts")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.Lshortfile)

	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("Nothing to do: set -postgres-dsn and/or -clickhouse-dsn")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *postgresDSN != "" {
		pool, err := postgres.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			logger.Fatalf("PostgreSQL migrations failed: %v", err)
		}
		pool.Close()
		logger.Println("PostgreSQL schema up to date")
	}

	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("ClickHouse migrations failed: %v", err)
		}
		_ = conn.Close()
		logger.Println("ClickHouse schema up to date")
	}

	if *seedPath == "" {
		return
	}
	if *postgresDSN == "" {
		logger.Fatal("-seed requires -postgres-dsn")
	}

	seed, err := app.LoadSeed(*seedPath)
	if err != nil {
		logger.Fatalf("Invalid seed file: %v", err)
	}
	stores, closeStores, err := app.OpenStores(ctx, *postgresDSN, "", false)
	if err != nil {
		logger.Fatalf("Failed to open stores: %v", err)
	}
	defer closeStores()

	stats, err := app.ApplySeed(ctx, stores, seed, time.Now().UTC())
	if err != nil {
		logger.Fatalf("Seeding failed: %v", err)
	}
	logger.Printf("Seeded %d tokens, %d known accounts (%d already present)",
		stats.TokensInserted, stats.AccountsInserted, stats.Skipped)
}
