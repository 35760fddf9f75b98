package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the API and CLI read from the environment.
type Config struct {
	Port string
	DB   DBConfig

	// ConfirmOnce rejects a second confirmation of the same purchase order.
	ConfirmOnce       bool
	LowStockThreshold int
}

type DBConfig struct {
	Driver        string
	URL           string
	Host          string
	User          string
	Password      string
	Name          string
	Port          string
	TimeZone      string
	SQLitePath    string
	LogLevel      string
	SlowThreshold time.Duration
}

// Load reads the configuration from environment variables. Callers load
// .env with godotenv before calling it.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "3000"),
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			URL:        os.Getenv("DATABASE_URL"),
			Host:       getEnv("DB_HOST", "localhost"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       os.Getenv("DB_NAME"),
			Port:       getEnv("DB_PORT", "5432"),
			TimeZone:   getEnv("DB_TIMEZONE", "UTC"),
			SQLitePath: getEnv("SQLITE_PATH", "inventory.db"),
			LogLevel:   strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		},
	}

	var err error
	if cfg.DB.SlowThreshold, err = time.ParseDuration(getEnv("DB_SLOW_THRESHOLD", "1s")); err != nil {
		return nil, fmt.Errorf("DB_SLOW_THRESHOLD: %w", err)
	}
	if cfg.ConfirmOnce, err = strconv.ParseBool(getEnv("CONFIRM_ONCE", "false")); err != nil {
		return nil, fmt.Errorf("CONFIRM_ONCE: %w", err)
	}
	if cfg.LowStockThreshold, err = strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "10")); err != nil {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err)
	}

	switch cfg.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DB.Driver)
	}

	return cfg, nil
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.TimeZone,
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
