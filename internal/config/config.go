package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all configuration for a snapshot run. Every field has a
// default, so a run with no config file and no environment behaves the same
// on every machine.
type Config struct {
	// Base URLs for API endpoints (configurable for testing)
	ScreenerBaseURL string `mapstructure:"screener_base_url"`
	QuickFSBaseURL  string `mapstructure:"quickfs_base_url"`

	// Enrichment
	SymbolColumn  string        `mapstructure:"symbol_column"`
	CountryColumn string        `mapstructure:"country_column"`
	MaxWorkers    int           `mapstructure:"max_workers"`
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user_agent"`

	// Output
	Timezone    string `mapstructure:"timezone"`
	OutputPath  string `mapstructure:"output_path"`
	PreviewRows int    `mapstructure:"preview_rows"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	SQLiteTable string `mapstructure:"sqlite_table"`

	// Scheduling, used only by the schedule command
	Schedule string `mapstructure:"schedule"`

	LogLevel string `mapstructure:"log_level"`
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from defaults, an optional config file and
// environment variables. Environment variables take precedence over config
// file values.
//
// configFile may be empty, in which case config.yaml is looked up in the
// working directory and $HOME/.marketsnapshot; a missing file is not an error.
//
// Recognized environment variables:
//   - SCREENER_BASE_URL, QUICKFS_BASE_URL
//   - SNAPSHOT_MAX_WORKERS, SNAPSHOT_TIMEOUT
//   - SNAPSHOT_TIMEZONE, SNAPSHOT_OUTPUT_PATH, SNAPSHOT_SQLITE_PATH
//   - SNAPSHOT_SCHEDULE, SNAPSHOT_LOG_LEVEL
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("screener_base_url", "https://scanner.tradingview.com")
	v.SetDefault("quickfs_base_url", "https://api.quickfs.net/stocks")
	v.SetDefault("symbol_column", "name")
	v.SetDefault("country_column", "")
	v.SetDefault("max_workers", 30)
	v.SetDefault("timeout", "10s")
	v.SetDefault("user_agent", "")
	v.SetDefault("timezone", "Europe/Berlin")
	v.SetDefault("output_path", "screener_results.csv")
	v.SetDefault("preview_rows", 5)
	v.SetDefault("sqlite_path", "")
	v.SetDefault("sqlite_table", "screener_results")
	v.SetDefault("schedule", "")
	v.SetDefault("log_level", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.marketsnapshot")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Bind environment variables for base URLs
	v.BindEnv("screener_base_url", "SCREENER_BASE_URL")
	v.BindEnv("quickfs_base_url", "QUICKFS_BASE_URL")

	// Bind environment variables for run settings
	v.BindEnv("symbol_column", "SNAPSHOT_SYMBOL_COLUMN")
	v.BindEnv("country_column", "SNAPSHOT_COUNTRY_COLUMN")
	v.BindEnv("max_workers", "SNAPSHOT_MAX_WORKERS")
	v.BindEnv("timeout", "SNAPSHOT_TIMEOUT")
	v.BindEnv("user_agent", "SNAPSHOT_USER_AGENT")
	v.BindEnv("timezone", "SNAPSHOT_TIMEZONE")
	v.BindEnv("output_path", "SNAPSHOT_OUTPUT_PATH")
	v.BindEnv("preview_rows", "SNAPSHOT_PREVIEW_ROWS")
	v.BindEnv("sqlite_path", "SNAPSHOT_SQLITE_PATH")
	v.BindEnv("sqlite_table", "SNAPSHOT_SQLITE_TABLE")
	v.BindEnv("schedule", "SNAPSHOT_SCHEDULE")
	v.BindEnv("log_level", "SNAPSHOT_LOG_LEVEL")

	// Unmarshal config into struct (durations are decoded from strings)
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate ensures all settings are usable.
func (c *Config) Validate() error {
	var problems []string

	if c.ScreenerBaseURL == "" {
		problems = append(problems, "screener_base_url is required")
	}
	if c.QuickFSBaseURL == "" {
		problems = append(problems, "quickfs_base_url is required")
	}
	if c.SymbolColumn == "" {
		problems = append(problems, "symbol_column is required")
	}
	if c.MaxWorkers < 1 {
		problems = append(problems, "max_workers must be positive")
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.OutputPath == "" {
		problems = append(problems, "output_path is required")
	}
	if c.PreviewRows < 0 {
		problems = append(problems, "preview_rows cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}
