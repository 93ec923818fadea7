// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"library-downloader/pkg/models"
)

// Config represents the application configuration
type Config struct {
	DatabasePath     string  `env:"DATABASE_PATH" envDefault:"library.db"`
	DownloadsPath    string  `env:"DOWNLOADS_PATH" envDefault:"downloads/books"`
	ResumePath       string  `env:"RESUME_PATH" envDefault:"downloads/resume"`
	SourceBaseURL    string  `env:"SOURCE_BASE_URL" envDefault:"http://localhost:8091"`
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
	MonthlyBudgetUSD float64 `env:"MONTHLY_BUDGET_USD" envDefault:"5.00"`
	DefaultRegion    string  `env:"DEFAULT_REGION" envDefault:"developing"`
	RetentionDays    int     `env:"PARTIAL_RETENTION_DAYS" envDefault:"14"`

	// Mobile data rates in USD per MB, per student region
	RateDevelopingUSD float64 `env:"RATE_DEVELOPING_USD" envDefault:"0.10"`
	RateEmergingUSD   float64 `env:"RATE_EMERGING_USD" envDefault:"0.05"`
	RateDevelopedUSD  float64 `env:"RATE_DEVELOPED_USD" envDefault:"0.02"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	switch models.Region(c.DefaultRegion) {
	case models.RegionDeveloping, models.RegionEmerging, models.RegionDeveloped:
	default:
		return fmt.Errorf("invalid region %q, must be one of: developing, emerging, developed", c.DefaultRegion)
	}

	if c.MonthlyBudgetUSD <= 0 {
		return fmt.Errorf("MONTHLY_BUDGET_USD must be positive, got: %v", c.MonthlyBudgetUSD)
	}
	if c.RateDevelopingUSD < 0 || c.RateEmergingUSD < 0 || c.RateDevelopedUSD < 0 {
		return fmt.Errorf("data rates cannot be negative")
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("PARTIAL_RETENTION_DAYS must be positive, got: %d", c.RetentionDays)
	}

	if c.DownloadsPath == "" {
		return fmt.Errorf("DOWNLOADS_PATH cannot be empty")
	}
	if c.ResumePath == "" {
		return fmt.Errorf("RESUME_PATH cannot be empty")
	}

	c.DownloadsPath = filepath.Clean(c.DownloadsPath)
	c.ResumePath = filepath.Clean(c.ResumePath)

	return nil
}

// Rates returns the per-region cost table in USD per MB
func (c *Config) Rates() map[models.Region]float64 {
	return map[models.Region]float64{
		models.RegionDeveloping: c.RateDevelopingUSD,
		models.RegionEmerging:   c.RateEmergingUSD,
		models.RegionDeveloped:  c.RateDevelopedUSD,
	}
}
