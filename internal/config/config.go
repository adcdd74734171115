// Package config provides the application configuration: feed endpoints,
// HTTP server tuning, logging and security knobs. Values are loaded from
// environment variables (CTEDASH_* prefix), layered over an optional YAML
// file, layered over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Feeds    FeedsConfig    `yaml:"feeds" envconfig:"FEEDS"`
	Period   PeriodConfig   `yaml:"period" envconfig:"PERIOD"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// FeedsConfig names the published-spreadsheet CSV exports and how to fetch
// them. The four URLs are required; there is no sensible default for
// someone else's spreadsheet.
type FeedsConfig struct {
	CtesURL         string        `yaml:"ctes_url" envconfig:"CTES_URL"`
	TargetsURL      string        `yaml:"targets_url" envconfig:"TARGETS_URL"`
	CalendarURL     string        `yaml:"calendar_url" envconfig:"CALENDAR_URL"`
	UsersURL        string        `yaml:"users_url" envconfig:"USERS_URL"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"30s"`
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL" default:"5m"`
}

// PeriodConfig carries fallback working-day counts used when the calendar
// feed does not provide them.
type PeriodConfig struct {
	TotalDays   int `yaml:"total_days" envconfig:"TOTAL_DAYS" default:"21"`
	ElapsedDays int `yaml:"elapsed_days" envconfig:"ELAPSED_DAYS" default:"1"`
}

// SecurityConfig contains CORS and rate limiting configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/ctedash.log"`
}

// Load builds the configuration from environment variables layered over the
// optional YAML file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CTEDASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays env values onto file values; env wins where set. Only the
// fields whose zero value cannot be a deliberate setting are merged.
func merge(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Feeds.CtesURL == "" {
		envCfg.Feeds.CtesURL = fileCfg.Feeds.CtesURL
	}
	if envCfg.Feeds.TargetsURL == "" {
		envCfg.Feeds.TargetsURL = fileCfg.Feeds.TargetsURL
	}
	if envCfg.Feeds.CalendarURL == "" {
		envCfg.Feeds.CalendarURL = fileCfg.Feeds.CalendarURL
	}
	if envCfg.Feeds.UsersURL == "" {
		envCfg.Feeds.UsersURL = fileCfg.Feeds.UsersURL
	}
	if envCfg.Logging.FilePath == "" {
		envCfg.Logging.FilePath = fileCfg.Logging.FilePath
	}
	return envCfg
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Feeds.CtesURL == "" {
		return fmt.Errorf("feeds.ctes_url is required")
	}
	if c.Feeds.TargetsURL == "" {
		return fmt.Errorf("feeds.targets_url is required")
	}
	if c.Feeds.CalendarURL == "" {
		return fmt.Errorf("feeds.calendar_url is required")
	}
	if c.Feeds.UsersURL == "" {
		return fmt.Errorf("feeds.users_url is required")
	}
	if c.Feeds.RefreshInterval <= 0 {
		c.Feeds.RefreshInterval = 5 * time.Minute
	}
	if c.Period.TotalDays < 1 {
		c.Period.TotalDays = 1
	}
	if c.Period.ElapsedDays < 1 {
		c.Period.ElapsedDays = 1
	}
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "stdout" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/ctedash.log"
	}

	return nil
}

func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in defaults; feed URLs stay empty and must be
// supplied before serving.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Feeds: FeedsConfig{
			FetchTimeout:    30 * time.Second,
			RefreshInterval: 5 * time.Minute,
		},
		Period: PeriodConfig{
			TotalDays:   21,
			ElapsedDays: 1,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/ctedash.log",
		},
	}
}
