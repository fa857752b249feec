// Package config provides configuration management for the goalline application.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/goalline/internal/allocation"
	"github.com/yourusername/goalline/internal/analytics"
	"github.com/yourusername/goalline/internal/strategy"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	FootballAPI FootballAPIConfig `mapstructure:"football_api" validate:"required"`
	Analysis    AnalysisConfig    `mapstructure:"analysis" validate:"required"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Backtest    BacktestConfig    `mapstructure:"backtest"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	AWS         AWSConfig         `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig selects and configures the match store
type DatabaseConfig struct {
	Driver             string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	Host               string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port               int    `mapstructure:"port" validate:"required_if=Driver postgres,gte=0,lte=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Driver postgres"`
	User               string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
	SQLitePath         string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

// FootballAPIConfig configures the match data provider
type FootballAPIConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	Burst              int     `mapstructure:"burst" validate:"required,gt=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0"`
	Championships      []int64 `mapstructure:"championships" validate:"dive,gt=0"`
}

// AnalysisConfig holds the estimator, scanner and allocation constants
type AnalysisConfig struct {
	TargetOdds            float64 `mapstructure:"target_odds" validate:"required,gt=1"`
	ConfidenceFloor       float64 `mapstructure:"confidence_floor" validate:"required,gte=0,lte=1"`
	StakeFraction         float64 `mapstructure:"stake_fraction" validate:"required,gt=0,lte=1"`
	MaxDailyBets          int     `mapstructure:"max_daily_bets" validate:"required,gt=0"`
	FormDecay             float64 `mapstructure:"form_decay" validate:"required,gt=0,lte=1"`
	RatingWindow          int     `mapstructure:"rating_window" validate:"required,gt=0"`
	InitialRating         float64 `mapstructure:"initial_rating" validate:"required,gt=0"`
	ReplayOpponentRatings bool    `mapstructure:"replay_opponent_ratings"`
	ScanWorkers           int     `mapstructure:"scan_workers" validate:"gte=0"`
	DefaultBankroll       float64 `mapstructure:"default_bankroll" validate:"required,gt=0"`
	DaysAhead             int     `mapstructure:"days_ahead" validate:"required,gt=0"`
}

// CacheConfig configures the team profile cache
type CacheConfig struct {
	ProfileTTLSeconds      int `mapstructure:"profile_ttl_seconds" validate:"gte=0"`
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds" validate:"gte=0"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Address             string `mapstructure:"address" validate:"required"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required_if=Enabled true,gte=0,lte=65535"`
	Path    string `mapstructure:"path"`
}

// SchedulerConfig configures the background jobs
type SchedulerConfig struct {
	Enabled                bool   `mapstructure:"enabled"`
	SyncSchedule           string `mapstructure:"sync_schedule" validate:"required_if=Enabled true,cronspec"`
	RecommendationSchedule string `mapstructure:"recommendation_schedule" validate:"required_if=Enabled true,cronspec"`
	SettlementSchedule     string `mapstructure:"settlement_schedule" validate:"cronspec"`
	Timezone               string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate             string  `mapstructure:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate               string  `mapstructure:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ChampionshipID        int64   `mapstructure:"championship_id" validate:"gte=0"`
	InitialBankroll       float64 `mapstructure:"initial_bankroll" validate:"gte=0"`
	MinHistory            int     `mapstructure:"min_history" validate:"gte=0"`
	ReplayOpponentRatings bool    `mapstructure:"replay_opponent_ratings"`
	MonteCarloIterations  int     `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	RiskFreeRate          float64 `mapstructure:"risk_free_rate" validate:"gte=0"`
	OutputPath            string  `mapstructure:"output_path"`
}

// TelegramConfig configures the optional chat notifier
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token" validate:"required_if=Enabled true"`
	ChatID   int64  `mapstructure:"chat_id" validate:"required_if=Enabled true"`
}

// AWSConfig configures the Secrets Manager overlay
type AWSConfig struct {
	SecretsEnabled bool   `mapstructure:"secrets_enabled"`
	Region         string `mapstructure:"region" validate:"required_if=SecretsEnabled true"`
	SecretName     string `mapstructure:"secret_name" validate:"required_if=SecretsEnabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		sslMode,
	)
}

// Timeout returns the provider request timeout.
func (f FootballAPIConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// ScannerPolicy returns the pricing policy scenarios are evaluated with.
func (a AnalysisConfig) ScannerPolicy() strategy.Policy {
	return strategy.Policy{
		TargetOdds:      a.TargetOdds,
		ConfidenceFloor: a.ConfidenceFloor,
	}
}

// AllocationPolicy returns the staking policy.
func (a AnalysisConfig) AllocationPolicy() allocation.Policy {
	return allocation.Policy{
		Policy:        a.ScannerPolicy(),
		StakeFraction: a.StakeFraction,
		MaxDailyBets:  a.MaxDailyBets,
	}
}

// ProfileOptions returns the estimator settings.
func (a AnalysisConfig) ProfileOptions() analytics.ProfileOptions {
	opts := analytics.DefaultProfileOptions()
	opts.InitialRating = a.InitialRating
	opts.FormDecay = a.FormDecay
	opts.RatingWindow = a.RatingWindow
	return opts
}

// ProfileTTL returns how long team profiles stay cached.
func (c CacheConfig) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSeconds) * time.Second
}

// CleanupInterval returns the cache janitor period.
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}
