package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file.
const FileName = ".tapmonkey.yaml"

// Status line renderers.
const (
	StatusLineTicker = "ticker"
	StatusLineTea    = "tea"
	StatusLineNone   = "none"
)

// Constants for default values.
const (
	DefaultTheme      = "default"
	DefaultStatusLine = StatusLineTicker
)

// CliFlags holds the values of command-line flags.
type CliFlags struct {
	Quiet      bool
	ThemeName  string
	NoColor    bool
	StatusLine string
	CI         bool
	Debug      bool
	ConfigFile string

	// Flags to track if they were explicitly set by the user
	QuietSet   bool
	NoColorSet bool
	CISet      bool
	DebugSet   bool
}

// AppConfig represents the contents of .tapmonkey.yaml.
type AppConfig struct {
	Quiet      bool   `yaml:"quiet"`
	Theme      string `yaml:"theme,omitempty"`
	NoColor    bool   `yaml:"no_color"`
	StatusLine string `yaml:"status_line,omitempty"`
	CI         bool   `yaml:"ci"`
	Debug      bool   `yaml:"debug"`

	path string
}

// Path returns the file the config was read from, or "" for defaults.
func (c *AppConfig) Path() string {
	return c.path
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Theme:      DefaultTheme,
		StatusLine: DefaultStatusLine,
	}
}

// LoadConfig loads .tapmonkey.yaml from the usual locations. A missing file
// yields defaults; an unreadable or invalid one yields defaults and a
// warning on stderr.
func LoadConfig() *AppConfig {
	configPath := getConfigPath()
	if configPath == "" {
		slog.Debug("no config file found, using defaults")
		return DefaultConfig()
	}

	cfg, err := LoadConfigFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v. Using defaults.\n", err)
		return DefaultConfig()
	}
	return cfg
}

// LoadConfigFile reads and decodes the config at path, filling unset fields
// with defaults.
func LoadConfigFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}
	if cfg.Theme == "" {
		cfg.Theme = DefaultTheme
	}
	if cfg.StatusLine == "" {
		cfg.StatusLine = DefaultStatusLine
	}
	cfg.path = path

	slog.Debug("loaded config", "path", path, "theme", cfg.Theme, "status_line", cfg.StatusLine)
	return cfg, nil
}

// getConfigPath tries to find the config file, checking the working
// directory first and then the user config directory.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		slog.Debug("user config dir unavailable", "error", err, "path", configHome)
		return ""
	}
	xdgPath := filepath.Join(configHome, "tapmonkey", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
