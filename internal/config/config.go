package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"propmerge/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Merge    MergeConfig
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// MergeConfig holds merge pipeline settings
type MergeConfig struct {
	FSAUniverseSize   int
	PriceVolatilityCV float64
	SlowMarketDays    float64
	MinCompleteness   float64
}

// PathConfig holds file system paths
type PathConfig struct {
	PropertiesFile string // Excel workbook with the property roster
	ReportDir      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			ReadTimeout:     getEnvDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Merge: MergeConfig{
			FSAUniverseSize:   getEnvIntOrDefault("FSA_UNIVERSE_SIZE", 1620),
			PriceVolatilityCV: getEnvFloatOrDefault("RISK_PRICE_VOLATILITY_CV", 0.25),
			SlowMarketDays:    getEnvFloatOrDefault("RISK_SLOW_MARKET_DAYS", 45),
			MinCompleteness:   getEnvFloatOrDefault("RISK_MIN_COMPLETENESS", 0.8),
		},
		Paths: PathConfig{
			PropertiesFile: getEnvOrDefault("PROPERTIES_FILE", ""),
			ReportDir:      getEnvOrDefault("REPORT_DIR", "./reports"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Merge.FSAUniverseSize <= 0 {
		return errors.ConfigInvalid("FSA_UNIVERSE_SIZE must be positive")
	}
	if config.Merge.MinCompleteness < 0 || config.Merge.MinCompleteness > 1 {
		return errors.ConfigInvalid("RISK_MIN_COMPLETENESS must be in [0, 1]")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
