package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "GOALLINE"
)

// Load reads and parses the configuration from file and environment variables.
// Placeholders in the YAML file (${VAR_NAME}) are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields. A
// missing file is not an error: defaults and environment variables are used instead.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the configuration when GOALLINE_CONFIG_PATH is set.
func ReloadFromEnv(cfg *Config) error {
	envPath := os.Getenv(envPrefix + "_CONFIG_PATH")
	if envPath == "" {
		return nil
	}
	newCfg, err := Load(envPath)
	if err != nil {
		return err
	}
	*cfg = *newCfg
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "goalline")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.sqlite_path", "goalline.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("football_api.base_url", "https://api.api-futebol.com.br/v1")
	v.SetDefault("football_api.timeout_seconds", 30)
	v.SetDefault("football_api.rate_limit_per_second", 1.0)
	v.SetDefault("football_api.burst", 1)
	v.SetDefault("football_api.retry_attempts", 3)

	v.SetDefault("analysis.target_odds", 1.25)
	v.SetDefault("analysis.confidence_floor", 0.82)
	v.SetDefault("analysis.stake_fraction", 0.05)
	v.SetDefault("analysis.max_daily_bets", 3)
	v.SetDefault("analysis.form_decay", 0.9)
	v.SetDefault("analysis.rating_window", 20)
	v.SetDefault("analysis.initial_rating", 1500.0)
	v.SetDefault("analysis.default_bankroll", 1000.0)
	v.SetDefault("analysis.days_ahead", 7)

	v.SetDefault("cache.profile_ttl_seconds", 3600)
	v.SetDefault("cache.cleanup_interval_seconds", 600)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.sync_schedule", "0 6 * * *")
	v.SetDefault("scheduler.recommendation_schedule", "0 9 * * *")
	v.SetDefault("scheduler.settlement_schedule", "0 */2 * * *")
	v.SetDefault("scheduler.timezone", "America/Sao_Paulo")

	v.SetDefault("backtest.initial_bankroll", 1000.0)
	v.SetDefault("backtest.min_history", 3)
	v.SetDefault("backtest.monte_carlo_iterations", 1000)
}
