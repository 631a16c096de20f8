// Package config loads the process-wide configuration for the core
// engine: CLI flags, CORE_-prefixed environment variables, and a YAML
// file, in that precedence order, over built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds every tunable the core engine reads at startup. Field
// names mirror the CLI flags and YAML keys one-to-one via mapstructure
// tags.
type Config struct {
	TexturesPath string `mapstructure:"textures_path"`
	SentryDSN    string `mapstructure:"sentry_dsn"`
	SocketName   string `mapstructure:"socket_name"`

	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	ICEServers []string `mapstructure:"ice_servers"`
}

// Default returns a Config populated with the values the engine falls
// back to when no flag, file, or environment variable overrides them.
func Default() *Config {
	return &Config{
		SocketName:    "core-socket",
		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,
	}
}

// Load merges defaults, an optional YAML file, and CORE_-prefixed
// environment variables into a Config, then validates the result.
// Fatal validation errors abort startup; warnings are logged and the
// offending fields are clamped to safe values in place.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("core")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("CORE")
	for _, key := range []string{
		"textures_path", "sentry_dsn", "socket_name",
		"log_level", "log_format", "log_file", "log_max_size_mb", "log_max_backups",
		"ice_servers",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	result := cfg.ValidateTiered()
	for _, err := range result.Warnings {
		slog.Warn("config validation", "error", err)
	}
	if result.HasFatals() {
		for _, err := range result.Fatals {
			slog.Error("config validation fatal", "error", err)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, nil
}

// ApplyFlags overlays values that were explicitly set on the command
// line, taking precedence over file/env values for the flags the core
// binary actually exposes.
func (c *Config) ApplyFlags(texturesPath, sentryDSN string) {
	if texturesPath != "" {
		c.TexturesPath = texturesPath
	}
	if sentryDSN != "" {
		c.SentryDSN = sentryDSN
	}
}

// GetDataDir returns the platform-specific data directory for the core engine.
func GetDataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "WindowpaneCore", "data")
	case "darwin":
		return "/Library/Application Support/WindowpaneCore/data"
	default:
		return "/var/lib/windowpane-core"
	}
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "WindowpaneCore")
	case "darwin":
		return "/Library/Application Support/WindowpaneCore"
	default:
		return "/etc/windowpane-core"
	}
}
