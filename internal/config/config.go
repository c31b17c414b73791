package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config aggregates the full dashboard configuration.
type Config struct {
	HTTP          HTTPConfig          `mapstructure:"http"`
	Log           LogConfig           `mapstructure:"log"`
	DB            DBConfig            `mapstructure:"database"`
	Storefront    StorefrontConfig    `mapstructure:"storefront"`
	Deals         DealsConfig         `mapstructure:"deals"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Jobs          JobsConfig          `mapstructure:"jobs"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// HTTPConfig configures the dashboard API server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	Environment string `mapstructure:"environment"`
}

// DBConfig locates the local SQLite store.
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// StorefrontConfig points at the bakery storefront REST API.
type StorefrontConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIToken   string        `mapstructure:"api_token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max_retries"`
}

// DealsConfig tunes deal classification.
type DealsConfig struct {
	// LowPriceThreshold marks items at or below this price as promotional
	// when no authoritative deal match is possible.
	LowPriceThreshold float64       `mapstructure:"low_price_threshold"`
	SnapshotTTL       time.Duration `mapstructure:"snapshot_ttl"`
}

// NotificationsConfig tunes the notification ledger.
type NotificationsConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// JobsConfig holds cron specs for the background jobs.
type JobsConfig struct {
	LedgerRefreshSpec string `mapstructure:"ledger_refresh_spec"`
	LowStockSpec      string `mapstructure:"low_stock_spec"`
	LowStockThreshold int    `mapstructure:"low_stock_threshold"`
}

// MetricsConfig configures Prometheus exposition.
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// SlogLevel maps the configured level string onto slog.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
