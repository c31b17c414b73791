package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from config.yaml, the environment and defaults,
// in increasing precedence of environment over file over defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/ovenboard/")

	v.SetEnvPrefix("OVENBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing file is fine; env vars and defaults carry the config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8090")
	v.SetDefault("http.shutdown_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "production")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/ovenboard.db")

	v.SetDefault("storefront.base_url", "http://localhost:8080")
	v.SetDefault("storefront.timeout", "10s")
	v.SetDefault("storefront.max_retries", 3)

	v.SetDefault("deals.low_price_threshold", 1.0)
	v.SetDefault("deals.snapshot_ttl", "1m")

	v.SetDefault("notifications.capacity", 100)

	v.SetDefault("jobs.ledger_refresh_spec", "@every 30s")
	v.SetDefault("jobs.low_stock_spec", "@every 5m")
	v.SetDefault("jobs.low_stock_threshold", 5)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "ovenboard")
}
