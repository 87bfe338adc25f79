package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Logging
	LogLevel  string
	LogFormat string // json or console

	// Sub-configurations
	Fetch    FetchConfig
	Analysis AnalysisConfig
	Universe UniverseConfig
	Report   ReportConfig
	Schedule ScheduleConfig
}

// FetchConfig controls the outbound data-fetch behaviour.
type FetchConfig struct {
	Concurrency int           // maximum simultaneous fetches
	MaxRetries  int           // total attempts per ticker
	RetryDelay  time.Duration // wait between attempts for the same ticker
	Timeout     time.Duration // per-request HTTP timeout
	RateLimit   float64       // requests per second against the provider
}

// AnalysisConfig controls the scoring and momentum calculations.
type AnalysisConfig struct {
	Years             int // lookback for growth rates (needs Years+1 fiscal periods)
	TopN              int // number of ranked stocks that get a momentum pass
	PriceLookbackDays int // calendar days of price history to request

	// Metric weights for the composite score
	WeightEPS     float64
	WeightRevenue float64
	WeightROE     float64
	WeightPER     float64
	WeightPBR     float64
}

// UniverseConfig controls ticker-universe discovery and caching.
type UniverseConfig struct {
	ListURL         string
	CachePath       string
	RefreshInterval time.Duration
}

// ReportConfig controls report output.
type ReportConfig struct {
	OutputDir string
}

// ScheduleConfig controls the cron-driven jobs.
type ScheduleConfig struct {
	// Cron specs with seconds field. Analysis defaults to weekdays at
	// 18:00, after the Tokyo close; universe refresh to Monday 06:00.
	AnalysisSpec string
	UniverseSpec string
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file. Missing variables fall back to defaults.
func Load() (*Config, error) {
	// .env is optional; ignore if absent
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		Fetch: FetchConfig{
			Concurrency: getEnvAsInt("FETCH_CONCURRENCY", 10),
			MaxRetries:  getEnvAsInt("FETCH_MAX_RETRIES", 3),
			RetryDelay:  getEnvAsDuration("FETCH_RETRY_DELAY", "2s"),
			Timeout:     getEnvAsDuration("FETCH_TIMEOUT", "30s"),
			RateLimit:   getEnvAsFloat("FETCH_RATE_LIMIT", 5.0),
		},

		Analysis: AnalysisConfig{
			Years:             getEnvAsInt("ANALYSIS_YEARS", 3),
			TopN:              getEnvAsInt("ANALYSIS_TOP_N", 20),
			PriceLookbackDays: getEnvAsInt("ANALYSIS_PRICE_LOOKBACK_DAYS", 730),
			WeightEPS:         getEnvAsFloat("WEIGHT_EPS", 1.0),
			WeightRevenue:     getEnvAsFloat("WEIGHT_REVENUE", 1.0),
			WeightROE:         getEnvAsFloat("WEIGHT_ROE", 1.0),
			WeightPER:         getEnvAsFloat("WEIGHT_PER", 1.0),
			WeightPBR:         getEnvAsFloat("WEIGHT_PBR", 1.0),
		},

		Universe: UniverseConfig{
			ListURL:         getEnv("UNIVERSE_LIST_URL", "https://www.jpx.co.jp/markets/statistics-equities/misc/01.html"),
			CachePath:       getEnv("UNIVERSE_CACHE_PATH", "data/tickers.csv"),
			RefreshInterval: getEnvAsDuration("UNIVERSE_REFRESH_INTERVAL", "4320h"), // 180 days
		},

		Report: ReportConfig{
			OutputDir: getEnv("REPORT_OUTPUT_DIR", "output"),
		},

		Schedule: ScheduleConfig{
			AnalysisSpec: getEnv("SCHEDULE_ANALYSIS_SPEC", "0 0 18 * * 1-5"),
			UniverseSpec: getEnv("SCHEDULE_UNIVERSE_SPEC", "0 0 6 * * 1"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks configuration invariants that would otherwise surface as
// confusing runtime behaviour.
func (c *Config) validate() error {
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be >= 1, got %d", c.Fetch.Concurrency)
	}
	if c.Fetch.MaxRetries < 1 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be >= 1, got %d", c.Fetch.MaxRetries)
	}
	if c.Analysis.Years < 1 {
		return fmt.Errorf("ANALYSIS_YEARS must be >= 1, got %d", c.Analysis.Years)
	}
	if c.Analysis.TopN < 1 {
		return fmt.Errorf("ANALYSIS_TOP_N must be >= 1, got %d", c.Analysis.TopN)
	}

	totalWeight := c.Analysis.WeightEPS + c.Analysis.WeightRevenue +
		c.Analysis.WeightROE + c.Analysis.WeightPER + c.Analysis.WeightPBR
	if totalWeight <= 0 {
		return fmt.Errorf("metric weights must sum to a positive value, got %v", totalWeight)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
