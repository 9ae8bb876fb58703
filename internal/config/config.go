// Package config provides application configuration with multi-source
// priority.
//
// Sources (highest to lowest):
//  1. Environment variables (GEMINI_API_KEY, CODECANVAS_*)
//  2. Config file (~/.codecanvas/config.yaml)
//  3. Defaults
//
// The server-side API key is the fallback credential used when the user
// has not supplied one in settings. Sensitive values are never logged.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidPort indicates the listen port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTheme indicates the default theme is not light or dark.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidRateLimit indicates a negative rate limit.
	ErrInvalidRateLimit = errors.New("invalid rate limit")
)

// DefaultContext is the default system context sent with every chat turn.
const DefaultContext = "You are a helpful AI assistant specializing in code generation."

// Config stores application configuration.
type Config struct {
	// Server
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Generative API
	ModelName string `mapstructure:"model_name"`
	APIKey    string `mapstructure:"api_key"` // SENSITIVE: server-default credential

	// Storage
	DataDir string `mapstructure:"data_dir"` // empty = ~/.codecanvas

	// Default settings for a fresh profile
	DefaultTheme   string `mapstructure:"default_theme"`
	DefaultPersona string `mapstructure:"default_persona"`
	DefaultContext string `mapstructure:"default_context"`

	// Logging
	LogLevel string `mapstructure:"log_level"` // debug|info|warn|error
	LogJSON  bool   `mapstructure:"log_json"`

	// Per-IP request rate limiting
	RateLimit float64 `mapstructure:"rate_limit"` // tokens per second
	RateBurst int     `mapstructure:"rate_burst"`
}

// Load loads configuration with env > file > defaults priority.
func Load() (*Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("CODECANVAS")
	v.AutomaticEnv()
	// The conventional Gemini variable wins over the prefixed form.
	if err := v.BindEnv("api_key", "GEMINI_API_KEY", "CODECANVAS_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("config file not found, using defaults", "search_path", dir)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

// Validate fails fast on out-of-range values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.ModelName == "" {
		return ErrInvalidModelName
	}
	if c.DefaultTheme != "dark" && c.DefaultTheme != "light" {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.DefaultTheme)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRateLimit, c.RateLimit)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabasePath returns the SQLite path inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// LogLevelValue maps the configured level string onto slog levels.
// Unknown values fall back to info.
func (c *Config) LogLevelValue() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	dir := filepath.Join(home, ".codecanvas")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8787)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("default_theme", "dark")
	v.SetDefault("default_persona", "")
	v.SetDefault("default_context", DefaultContext)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("rate_burst", 20)
}
