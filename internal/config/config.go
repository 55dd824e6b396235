// Package config loads runtime configuration from .env and environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"virtuoso-gem-finder/internal/trend"
	"virtuoso-gem-finder/internal/whale"
)

// Config holds application configuration.
type Config struct {
	// HTTP server
	ListenAddr      string
	ShutdownTimeout time.Duration

	// Birdeye
	BirdeyeAPIKey     string
	BirdeyeBaseURL    string
	BirdeyeStreamURL  string
	BirdeyeTimeout    time.Duration
	BirdeyeMaxRetries int
	BirdeyeRateLimit  float64 // requests per second
	BirdeyeRateBurst  int
	TraderLimit       int

	// Redis cache (disabled when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CacheNS       string

	// Storage (each disabled when its DSN is empty)
	PostgresDSN   string
	ClickhouseDSN string
	RecordData    bool // persist live candles and trader snapshots to ClickHouse

	// Batch fetching
	MaxConcurrent int
	WaveDelay     time.Duration

	Trend trend.Config
	Whale whale.Config
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() *Config {
	tc := trend.DefaultConfig()
	tc.EMAShortPeriod = getEnvInt("TREND_EMA_SHORT", tc.EMAShortPeriod)
	tc.EMALongPeriod = getEnvInt("TREND_EMA_LONG", tc.EMALongPeriod)
	tc.StrictEMASeeding = getEnvBool("TREND_STRICT_EMA_SEEDING", tc.StrictEMASeeding)
	tc.CandleLimit = getEnvInt("TREND_CANDLE_LIMIT", tc.CandleLimit)
	tc.VolumeChange = getEnvFloat("TREND_VOLUME_CHANGE", tc.VolumeChange)
	tc.BullishScore = getEnvFloat("TREND_BULLISH_SCORE", tc.BullishScore)

	wc := whale.DefaultConfig()
	wc.Whale.MinVolume = getEnvFloat("WHALE_MIN_VOLUME", wc.Whale.MinVolume)
	wc.Whale.MinAvgTrade = getEnvFloat("WHALE_MIN_AVG_TRADE", wc.Whale.MinAvgTrade)
	wc.Shark.MinVolume = getEnvFloat("SHARK_MIN_VOLUME", wc.Shark.MinVolume)
	wc.Shark.MinAvgTrade = getEnvFloat("SHARK_MIN_AVG_TRADE", wc.Shark.MinAvgTrade)
	wc.ExcludeOffCurve = getEnvBool("WHALE_EXCLUDE_OFF_CURVE", wc.ExcludeOffCurve)

	return &Config{
		ListenAddr:      getEnvOrDefault("LISTEN_ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		BirdeyeAPIKey:     os.Getenv("BIRDEYE_API_KEY"),
		BirdeyeBaseURL:    getEnvOrDefault("BIRDEYE_BASE_URL", "https://public-api.birdeye.so"),
		BirdeyeStreamURL:  getEnvOrDefault("BIRDEYE_STREAM_URL", "wss://public-api.birdeye.so/socket/solana"),
		BirdeyeTimeout:    getEnvDuration("BIRDEYE_TIMEOUT", 30*time.Second),
		BirdeyeMaxRetries: getEnvInt("BIRDEYE_MAX_RETRIES", 3),
		BirdeyeRateLimit:  getEnvFloat("BIRDEYE_RATE_LIMIT", 15),
		BirdeyeRateBurst:  getEnvInt("BIRDEYE_RATE_BURST", 15),
		TraderLimit:       getEnvInt("BIRDEYE_TRADER_LIMIT", 50),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheNS:       getEnvOrDefault("CACHE_NAMESPACE", "market"),

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		RecordData:    getEnvBool("RECORD_MARKET_DATA", false),

		MaxConcurrent: getEnvInt("BATCH_MAX_CONCURRENT", 8),
		WaveDelay:     getEnvDuration("BATCH_WAVE_DELAY", 250*time.Millisecond),

		Trend: tc,
		Whale: wc,
	}
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration accepts Go duration strings ("500ms", "2m").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}
