// Package common provides shared utilities for Fathom
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fathom
type Config struct {
	Environment string        `toml:"environment"`
	Symbols     []string      `toml:"symbols"` // symbols warmed at startup and refreshed by the scheduler
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage backend configuration.
// Backend "surrealdb" (default) uses the external SurrealDB instance at
// Address; backend "badger" uses an embedded BadgerHold store at Path.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Path      string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	SECFacts   SECFactsConfig   `toml:"secfacts"`
	MarketData MarketDataConfig `toml:"marketdata"`
	Moat       MoatConfig       `toml:"moat"`
	Gemini     GeminiConfig     `toml:"gemini"`
}

// SECFactsConfig holds SEC company-facts API configuration
type SECFactsConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"` // SEC requires a contact User-Agent
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *SECFactsConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MarketDataConfig holds quote provider configuration
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketDataConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MoatConfig holds the external moat-score provider configuration
type MoatConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MoatConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SchedulerConfig holds the refresh scheduler configuration
type SchedulerConfig struct {
	Enabled bool   `toml:"enabled"`
	Spec    string `toml:"spec"` // cron spec, default nightly
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   "surrealdb",
			Address:   "ws://localhost:8000",
			Username:  "root",
			Password:  "root",
			Namespace: "fathom",
			Database:  "fathom",
			Path:      "data/fathom",
		},
		Clients: ClientsConfig{
			SECFacts: SECFactsConfig{
				BaseURL:   "https://data.sec.gov/api/xbrl",
				RateLimit: 8,
				Timeout:   "30s",
			},
			MarketData: MarketDataConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Moat: MoatConfig{
				Timeout: "15s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
			Spec:    "0 2 * * *",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FATHOM_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FATHOM_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FATHOM_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FATHOM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("FATHOM_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if addr := os.Getenv("FATHOM_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if path := os.Getenv("FATHOM_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if ua := os.Getenv("FATHOM_SEC_USER_AGENT"); ua != "" {
		config.Clients.SECFacts.UserAgent = ua
	}
	if key := os.Getenv("FATHOM_MARKETDATA_API_KEY"); key != "" {
		config.Clients.MarketData.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if symbols := os.Getenv("FATHOM_SYMBOLS"); symbols != "" {
		parts := strings.Split(symbols, ",")
		config.Symbols = config.Symbols[:0]
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				config.Symbols = append(config.Symbols, strings.ToUpper(s))
			}
		}
	}
}

// validateConfig checks config values that would otherwise fail at runtime.
func validateConfig(config *Config) error {
	backend := strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	switch backend {
	case "", "surrealdb", "badger":
	default:
		return fmt.Errorf("unknown storage backend: %s (supported: surrealdb, badger)", config.Storage.Backend)
	}
	if backend == "" {
		backend = "surrealdb"
	}
	config.Storage.Backend = backend

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
