// Package config loads and persists application configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Provider      ProviderConfig      `mapstructure:"provider"`
	UI            UIConfig            `mapstructure:"ui"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// ProviderConfig holds the book server connection settings
type ProviderConfig struct {
	URL    string `mapstructure:"url"`     // Server URL
	APIKey string `mapstructure:"api_key"` // X-Api-Key value
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultView      string `mapstructure:"default_view"` // "grid" or "list"
	GridColumns      int    `mapstructure:"grid_columns"`
	HideCompilations bool   `mapstructure:"hide_compilations"`
	ShowOwnedBadges  bool   `mapstructure:"show_owned_badges"`
	ConfirmOnRemove  bool   `mapstructure:"confirm_on_remove"`
	MonitorNewBooks  bool   `mapstructure:"monitor_new_books"`
}

// CacheConfig holds persistent context cache configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Empty disables persistence
}

// NotificationsConfig holds toast behavior configuration
type NotificationsConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			URL:    "",
			APIKey: "",
		},
		UI: UIConfig{
			DefaultView:     "grid",
			GridColumns:     4,
			ShowOwnedBadges: true,
			ConfirmOnRemove: true,
			MonitorNewBooks: true,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Notifications: NotificationsConfig{
			TTLSeconds: 3,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shelfarr", "shelfarr.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shelfarr", "shelfarr.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shelfarr")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shelfarr")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "shelfarr", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shelfarr", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("SHELFARR")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("provider.url", cfg.Provider.URL)
	viper.Set("provider.api_key", cfg.Provider.APIKey)

	viper.Set("ui.default_view", cfg.UI.DefaultView)
	viper.Set("ui.grid_columns", cfg.UI.GridColumns)
	viper.Set("ui.hide_compilations", cfg.UI.HideCompilations)
	viper.Set("ui.show_owned_badges", cfg.UI.ShowOwnedBadges)
	viper.Set("ui.confirm_on_remove", cfg.UI.ConfirmOnRemove)
	viper.Set("ui.monitor_new_books", cfg.UI.MonitorNewBooks)

	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("notifications.ttl_seconds", cfg.Notifications.TTLSeconds)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the provider URL and API key are set
func (c *Config) IsConfigured() bool {
	return c.Provider.URL != "" && c.Provider.APIKey != ""
}

// ClearProviderConfig removes the provider connection settings while
// preserving other settings (UI, cache, logging, notifications)
func ClearProviderConfig() error {
	viper.Set("provider.url", "")
	viper.Set("provider.api_key", "")

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCache removes all cached data
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// SetupLogger opens the configured log file and returns a JSON logger
// writing to it. The TUI owns the terminal, so logs never go to stderr.
func SetupLogger(cfg *LoggingConfig) (*slog.Logger, error) {
	path := expandHome(cfg.File)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: LogLevel(cfg.Level)})
	return slog.New(handler), nil
}

// NullLogger returns a logger that drops everything. Used when file logging
// cannot be set up.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogLevel maps a configured level name to slog, defaulting to info for
// anything unrecognized.
func LogLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandHome resolves a leading ~ against the user's home directory,
// leaving the path untouched when the home directory is unknown.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
