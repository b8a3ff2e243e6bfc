package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// External rate provider
	RateAPIBaseURL string
	RateAPIKey     string
	RateAPITimeout time.Duration

	// Sync behaviour
	SyncDelayBetweenCalls time.Duration
	SyncMaxRetries        int
	SyncRetryDelay        time.Duration
	SyncRateLimitCooldown time.Duration
	SyncScheduleTime      string // "HH:MM" in UTC

	// Conversion behaviour
	FallbackCurrency string
	EnableFallback   bool
	AmountDecimals   int32
	RateDecimals     int32
	MinAmount        float64
	MaxAmount        float64

	// Requests per minute allowed on the conversion endpoint per client IP.
	RateLimitRPM int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("FREECURRENCYAPI_BASE_URL", "https://api.freecurrencyapi.com/v1")
	viper.SetDefault("FREECURRENCYAPI_KEY", "")
	viper.SetDefault("FREECURRENCYAPI_TIMEOUT", "30s")
	viper.SetDefault("CURRENCY_SYNC_DELAY", "1s")
	viper.SetDefault("CURRENCY_SYNC_MAX_RETRIES", 3)
	viper.SetDefault("CURRENCY_SYNC_RETRY_DELAY", "5s")
	viper.SetDefault("CURRENCY_SYNC_RATE_LIMIT_COOLDOWN", "300s")
	viper.SetDefault("CURRENCY_SYNC_SCHEDULE_TIME", "00:00")
	viper.SetDefault("CONVERSION_FALLBACK_CURRENCY", "USD")
	viper.SetDefault("CONVERSION_ENABLE_FALLBACK", true)
	viper.SetDefault("CONVERSION_AMOUNT_DECIMALS", 2)
	viper.SetDefault("CONVERSION_RATE_DECIMALS", 8)
	viper.SetDefault("CONVERSION_MIN_AMOUNT", 0.01)
	viper.SetDefault("CONVERSION_MAX_AMOUNT", 999999999.99)
	viper.SetDefault("RATE_LIMIT_RPM", 60)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.RateAPIBaseURL = viper.GetString("FREECURRENCYAPI_BASE_URL")
	cfg.RateAPIKey = viper.GetString("FREECURRENCYAPI_KEY")
	if cfg.RateAPIKey == "" {
		log.Println("Warning: FREECURRENCYAPI_KEY environment variable not set. Rate sync will fail until it is configured.")
	}
	cfg.RateAPITimeout = durationOrDefault("FREECURRENCYAPI_TIMEOUT", 30*time.Second)

	cfg.SyncDelayBetweenCalls = durationOrDefault("CURRENCY_SYNC_DELAY", time.Second)
	cfg.SyncMaxRetries = viper.GetInt("CURRENCY_SYNC_MAX_RETRIES")
	if cfg.SyncMaxRetries < 1 {
		log.Printf("Warning: CURRENCY_SYNC_MAX_RETRIES must be at least 1, got %d. Defaulting to 3.\n", cfg.SyncMaxRetries)
		cfg.SyncMaxRetries = 3
	}
	cfg.SyncRetryDelay = durationOrDefault("CURRENCY_SYNC_RETRY_DELAY", 5*time.Second)
	cfg.SyncRateLimitCooldown = durationOrDefault("CURRENCY_SYNC_RATE_LIMIT_COOLDOWN", 300*time.Second)
	cfg.SyncScheduleTime = viper.GetString("CURRENCY_SYNC_SCHEDULE_TIME")

	cfg.FallbackCurrency = viper.GetString("CONVERSION_FALLBACK_CURRENCY")
	cfg.EnableFallback = viper.GetBool("CONVERSION_ENABLE_FALLBACK")
	cfg.AmountDecimals = viper.GetInt32("CONVERSION_AMOUNT_DECIMALS")
	cfg.RateDecimals = viper.GetInt32("CONVERSION_RATE_DECIMALS")
	cfg.MinAmount = viper.GetFloat64("CONVERSION_MIN_AMOUNT")
	cfg.MaxAmount = viper.GetFloat64("CONVERSION_MAX_AMOUNT")

	cfg.RateLimitRPM = viper.GetInt("RATE_LIMIT_RPM")

	return cfg, nil
}

// durationOrDefault parses a duration from viper, warning and falling back on
// invalid values.
func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}
