package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// External statement parser service
	IngestServiceURL     string
	IngestServiceTimeout time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Matching strategy tuning
	MatchDateToleranceDays int

	// Rate limiting (requests per minute per client IP)
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("INGEST_SVC_URL", "http://localhost:8090")
	viper.SetDefault("INGEST_SVC_TIMEOUT", "30s")
	viper.SetDefault("MAX_UPLOAD_BYTES", int64(10*1024*1024))
	viper.SetDefault("MATCH_DATE_TOLERANCE_DAYS", 3)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.IngestServiceURL = viper.GetString("INGEST_SVC_URL")

	ingestTimeoutStr := viper.GetString("INGEST_SVC_TIMEOUT")
	ingestTimeout, err := time.ParseDuration(ingestTimeoutStr)
	if err != nil {
		ingestTimeout = 30 * time.Second
		if ingestTimeoutStr != "" {
			log.Printf("Warning: Invalid value for INGEST_SVC_TIMEOUT ('%s'). Defaulting to %s.\n", ingestTimeoutStr, ingestTimeout.String())
		}
	}
	cfg.IngestServiceTimeout = ingestTimeout

	cfg.MaxUploadBytes = viper.GetInt64("MAX_UPLOAD_BYTES")
	if cfg.MaxUploadBytes < 0 {
		log.Printf("Warning: MAX_UPLOAD_BYTES is negative (%d). Disabling the size check.\n", cfg.MaxUploadBytes)
		cfg.MaxUploadBytes = 0
	}

	cfg.MatchDateToleranceDays = viper.GetInt("MATCH_DATE_TOLERANCE_DAYS")
	if cfg.MatchDateToleranceDays < 0 {
		cfg.MatchDateToleranceDays = 0
	}

	cfg.RateLimitPerMinute = viper.GetInt("RATE_LIMIT_PER_MINUTE")
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 120
	}

	return cfg, nil
}
