// Package config provides configuration management for the goleads service.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/goleads/internal/logger"
	"github.com/jonesrussell/goleads/internal/notify"
	"github.com/jonesrussell/goleads/internal/scrape"
)

// Server defaults
const (
	DefaultServerAddress      = ":8080"
	DefaultServerReadTimeout  = 15 * time.Second
	DefaultServerWriteTimeout = 15 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
)

// Scheduler defaults
const (
	DefaultErrorThreshold = 5
	DefaultScrapeTimeout  = 30 * time.Second
	DefaultInterval       = 5 * time.Minute
)

// Detector defaults
const (
	DefaultMinMatches = 2
)

// Scrape modes
const (
	ModeLive     = "live"
	ModeSimulate = "simulate"
)

// Config represents the application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig `mapstructure:"server"`
	// Scheduler holds campaign scheduler configuration.
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	// Detector holds lead detector configuration.
	Detector DetectorConfig `mapstructure:"detector"`
	// Notify holds notification sink configuration.
	Notify NotifyConfig `mapstructure:"notify"`
	// Database holds persistence configuration.
	Database DatabaseConfig `mapstructure:"database"`
	// Scrape holds platform scraping configuration.
	Scrape ScrapeConfig `mapstructure:"scrape"`
	// Targets is the default list of search targets for new campaigns.
	Targets []string `mapstructure:"targets"`
	// Logger holds logging configuration.
	Logger logger.Config `mapstructure:"logger"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// SchedulerConfig holds campaign scheduler settings.
type SchedulerConfig struct {
	// ErrorThreshold is the number of consecutive scrape failures on a
	// single target and platform pair before the campaign is failed.
	ErrorThreshold int `mapstructure:"error_threshold"`
	// ScrapeTimeout bounds a single scrape cycle.
	ScrapeTimeout time.Duration `mapstructure:"scrape_timeout"`
	// DefaultInterval is used when a campaign request omits the interval.
	DefaultInterval time.Duration `mapstructure:"default_interval"`
}

// DetectorConfig holds lead detector settings.
type DetectorConfig struct {
	// Backends is the ordered list of detector backends to consult.
	// Supported values: keyword, pattern.
	Backends []string `mapstructure:"backends"`
	// Keywords overrides the built-in keyword list when non-empty.
	Keywords []string `mapstructure:"keywords"`
	// MinMatches is the number of distinct keywords a candidate must
	// contain to be classified as a lead.
	MinMatches int `mapstructure:"min_matches"`
}

// NotifyConfig holds notification sink settings.
type NotifyConfig struct {
	// WebhookURL enables the webhook sink when non-empty.
	WebhookURL string `mapstructure:"webhook_url"`
	// Email enables the email sink when fully configured.
	Email notify.EmailConfig `mapstructure:"email"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `mapstructure:"path"`
}

// ScrapeConfig holds platform scraping settings.
type ScrapeConfig struct {
	// Mode selects the fetcher implementation: live or simulate.
	Mode string `mapstructure:"mode"`
	// FailureRate injects scrape failures in simulate mode, 0.0 to 1.0.
	FailureRate float64 `mapstructure:"failure_rate"`
	// Platforms describes the marketplaces to scrape.
	Platforms []scrape.PlatformConfig `mapstructure:"platforms"`
}

// Load initializes Viper, reads the config file if present, applies env
// overrides and defaults, and returns the parsed configuration.
func Load() (*Config, error) {
	v := viper.New()
	if err := initViper(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// initViper configures Viper for environment variable and config file reading.
func initViper(v *viper.Viper) error {
	// .env is optional
	_ = godotenv.Load()

	v.AutomaticEnv()
	v.SetEnvPrefix("GOLEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := bindEnvironmentVariables(v); err != nil {
		return fmt.Errorf("bind environment variables: %w", err)
	}

	// Config file is optional, env and defaults cover the rest
	_ = v.ReadInConfig()
	return nil
}

// bindEnvironmentVariables binds legacy environment variable names to
// config keys.
func bindEnvironmentVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"logger.level":       {"LOG_LEVEL"},
		"logger.format":      {"LOG_FORMAT"},
		"server.address":     {"SERVER_ADDRESS"},
		"database.path":      {"DATABASE_PATH"},
		"notify.webhook_url": {"WEBHOOK_URL"},
		"scrape.mode":        {"SCRAPE_MODE"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults applies default values to the config.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultServerAddress
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultServerIdleTimeout
	}

	if c.Scheduler.ErrorThreshold == 0 {
		c.Scheduler.ErrorThreshold = DefaultErrorThreshold
	}
	if c.Scheduler.ScrapeTimeout == 0 {
		c.Scheduler.ScrapeTimeout = DefaultScrapeTimeout
	}
	if c.Scheduler.DefaultInterval == 0 {
		c.Scheduler.DefaultInterval = DefaultInterval
	}

	if len(c.Detector.Backends) == 0 {
		c.Detector.Backends = []string{"keyword"}
	}
	if c.Detector.MinMatches == 0 {
		c.Detector.MinMatches = DefaultMinMatches
	}

	if c.Database.Path == "" {
		c.Database.Path = "goleads.db"
	}

	if c.Scrape.Mode == "" {
		c.Scrape.Mode = ModeSimulate
	}
	if len(c.Scrape.Platforms) == 0 {
		c.Scrape.Platforms = []scrape.PlatformConfig{
			{Name: "marketplace"},
			{Name: "olx"},
		}
	}

	c.Logger.SetDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Scrape.Mode != ModeLive && c.Scrape.Mode != ModeSimulate {
		return fmt.Errorf("scrape.mode must be %q or %q, got %q", ModeLive, ModeSimulate, c.Scrape.Mode)
	}
	if c.Scheduler.ErrorThreshold < 1 {
		return fmt.Errorf("scheduler.error_threshold must be positive, got %d", c.Scheduler.ErrorThreshold)
	}
	if c.Scrape.FailureRate < 0 || c.Scrape.FailureRate > 1 {
		return fmt.Errorf("scrape.failure_rate must be between 0 and 1, got %g", c.Scrape.FailureRate)
	}
	if c.Scrape.Mode == ModeLive {
		for i := range c.Scrape.Platforms {
			p := &c.Scrape.Platforms[i]
			if p.URL == "" {
				return fmt.Errorf("scrape.platforms[%d] (%s): url is required in live mode", i, p.Name)
			}
			if p.ItemSelector == "" {
				return fmt.Errorf("scrape.platforms[%d] (%s): item_selector is required in live mode", i, p.Name)
			}
		}
	}
	return nil
}

// PlatformNames returns the configured platform names in order.
func (c *Config) PlatformNames() []string {
	names := make([]string, 0, len(c.Scrape.Platforms))
	for i := range c.Scrape.Platforms {
		names = append(names, c.Scrape.Platforms[i].Name)
	}
	return names
}
