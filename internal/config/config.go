// Package config provides configuration management for the CB Sentinel application.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	FinMind  FinMindConfig  `mapstructure:"finmind" validate:"required"`
	Detector DetectorConfig `mapstructure:"detector" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Scanner  ScannerConfig  `mapstructure:"scanner" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration.
// Persistence of runs is skipped when Enabled is false.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// FinMindConfig represents the FinMind open-data API client configuration
type FinMindConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	Token          string  `mapstructure:"token"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// DetectorConfig represents volume breakout detection parameters
type DetectorConfig struct {
	Window     int     `mapstructure:"window" validate:"required,eq=20"`
	Multiplier float64 `mapstructure:"multiplier" validate:"required,multiplier"`
}

// BacktestConfig represents forward-return evaluation configuration
type BacktestConfig struct {
	BondID       string `mapstructure:"bond_id" validate:"required"`
	StartDate    string `mapstructure:"start_date" validate:"omitempty,isodate"`
	LookbackDays int    `mapstructure:"lookback_days" validate:"required,gt=0"`
	HoldingDays  int    `mapstructure:"holding_days" validate:"required,min=10,max=120"`
	OutputPath   string `mapstructure:"output_path"`
}

// ScannerConfig represents universe scan configuration
type ScannerConfig struct {
	TrailingK    int      `mapstructure:"trailing_k" validate:"required,gt=0"`
	Concurrency  int      `mapstructure:"concurrency" validate:"required,gt=0,lte=64"`
	LookbackDays int      `mapstructure:"lookback_days" validate:"required,gt=0"`
	Universe     []string `mapstructure:"universe"`
}

// CacheConfig represents fetch cache configuration
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"required_if=Enabled true,gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig represents the cron schedule of the monitor daemon
type ScheduleConfig struct {
	ScanCron    string `mapstructure:"scan_cron"`
	PremiumCron string `mapstructure:"premium_cron"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MultiplierDecimal returns the detector multiplier as an exact decimal
func (d DetectorConfig) MultiplierDecimal() decimal.Decimal {
	return decimal.NewFromFloat(d.Multiplier)
}

// CacheTTL returns the cache time-to-live
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Timeout returns the HTTP timeout for FinMind requests
func (f FinMindConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}
