package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load failure policies for the task board.
const (
	LoadFailureSilent = "silent"
	LoadFailureNotify = "notify"
)

// APIConfig describes how to reach the coordination API.
type APIConfig struct {
	// BaseURL is the API root; endpoint paths such as /auth/login are
	// appended to it.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// BoardConfig holds task board behavior.
type BoardConfig struct {
	// LoadFailurePolicy is LoadFailureSilent or LoadFailureNotify.
	LoadFailurePolicy string `mapstructure:"load_failure_policy" yaml:"load_failure_policy"`
}

// NotificationConfig holds notification queue settings.
type NotificationConfig struct {
	TTLMillis int `mapstructure:"ttl_ms" yaml:"ttl_ms"`
}

// ActivityConfig holds settings for the local activity log.
type ActivityConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig          `mapstructure:"api" yaml:"api"`
	Board         BoardConfig        `mapstructure:"board" yaml:"board"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Activity      ActivityConfig     `mapstructure:"activity" yaml:"activity"`
	Log           LogConfig          `mapstructure:"log" yaml:"log"`
	Display       DisplayConfig      `mapstructure:"display" yaml:"display"`
}

// Timeout returns the configured request timeout.
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// NotificationTTL returns how long a notification stays visible.
func (c *AppConfig) NotificationTTL() time.Duration {
	return time.Duration(c.Notifications.TTLMillis) * time.Millisecond
}

// configDir returns ~/.config/careboard, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "careboard")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/careboard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:3000/api",
			TimeoutSec: 30,
		},
		Board: BoardConfig{
			LoadFailurePolicy: LoadFailureSilent,
		},
		Notifications: NotificationConfig{
			TTLMillis: 5000,
		},
		Activity: ActivityConfig{
			DBPath: filepath.Join(configDir(), "activity.db"),
		},
		Log: LogConfig{
			File: filepath.Join(configDir(), "careboard.log"),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden with CAREBOARD_* environment variables
// (CAREBOARD_API_BASE_URL, CAREBOARD_BOARD_LOAD_FAILURE_POLICY, ...).
// If the file does not exist, defaults plus environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("careboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv knows which keys exist.
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("board.load_failure_policy", def.Board.LoadFailurePolicy)
	v.SetDefault("notifications.ttl_ms", def.Notifications.TTLMillis)
	v.SetDefault("activity.db_path", def.Activity.DBPath)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("display.theme", def.Display.Theme)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must not be empty")
	}
	switch c.Board.LoadFailurePolicy {
	case LoadFailureSilent, LoadFailureNotify:
	default:
		return fmt.Errorf(
			"board.load_failure_policy must be %q or %q, got %q",
			LoadFailureSilent, LoadFailureNotify, c.Board.LoadFailurePolicy,
		)
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 30
	}
	if c.Notifications.TTLMillis <= 0 {
		c.Notifications.TTLMillis = 5000
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("board", cfg.Board)
	v.Set("notifications", cfg.Notifications)
	v.Set("activity", cfg.Activity)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
