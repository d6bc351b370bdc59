package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	UI      UIConfig      `mapstructure:"ui"`
}

// CacheConfig locates the cache file
type CacheConfig struct {
	Dir                  string `mapstructure:"dir"`
	File                 string `mapstructure:"file"`
	DefaultLifetimeHours int    `mapstructure:"default_lifetime_hours"` // 0 = never expire
}

// SessionConfig locates the session registry database
type SessionConfig struct {
	Path string `mapstructure:"path"`
	ID   string `mapstructure:"id"` // empty = tied to the parent process
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node_exporter textfile; empty = disabled
}

// UIConfig holds UI configuration
type UIConfig struct {
	Notify bool `mapstructure:"notify"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir:                  defaultCachePath(),
			File:                 "cache.json",
			DefaultLifetimeHours: 72,
		},
		Session: SessionConfig{
			Path: filepath.Join(defaultStatePath(), "session.db"),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultStatePath(), "tiercache.log"),
			Level: "INFO",
		},
		UI: UIConfig{
			Notify: true,
		},
	}
}

// defaultStatePath returns the default data directory for the current OS
func defaultStatePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tiercache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "tiercache")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tiercache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "tiercache")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "tiercache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".cache", "tiercache")
	}
}

// Load reads configuration from configFile, or from config.yaml in the
// default locations when configFile is empty. TIERCACHE_* environment
// variables override file values (TIERCACHE_SESSION_ID for session.id).
func Load(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.file", cfg.Cache.File)
	v.SetDefault("cache.default_lifetime_hours", cfg.Cache.DefaultLifetimeHours)
	v.SetDefault("session.path", cfg.Session.Path)
	v.SetDefault("session.id", cfg.Session.ID)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("metrics.textfile", cfg.Metrics.Textfile)
	v.SetDefault("ui.notify", cfg.UI.Notify)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides
	v.SetEnvPrefix("TIERCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Cache.DefaultLifetimeHours < 0 {
		return nil, fmt.Errorf("cache.default_lifetime_hours must not be negative, got %d", cfg.Cache.DefaultLifetimeHours)
	}
	if cfg.Cache.File == "" {
		return nil, fmt.Errorf("cache.file must not be empty")
	}

	return cfg, nil
}

// CachePath returns the full path of the cache file.
func (c *Config) CachePath() string {
	return filepath.Join(ExpandHome(c.Cache.Dir), c.Cache.File)
}

// SessionPath returns the full path of the session registry database.
func (c *Config) SessionPath() string {
	return ExpandHome(c.Session.Path)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// DefaultFile returns the config file read when no --config is given.
func DefaultFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// Save writes cfg as yaml to path, or to DefaultFile when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultFile()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to keep the snake_case key names
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.file", cfg.Cache.File)
	v.Set("cache.default_lifetime_hours", cfg.Cache.DefaultLifetimeHours)

	v.Set("session.path", cfg.Session.Path)
	if cfg.Session.ID != "" {
		v.Set("session.id", cfg.Session.ID)
	}

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if cfg.Metrics.Textfile != "" {
		v.Set("metrics.textfile", cfg.Metrics.Textfile)
	}
	v.Set("ui.notify", cfg.UI.Notify)

	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
