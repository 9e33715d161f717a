package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/dkoosis/tapmonkey/pkg/stream"
)

// ResolvedConfig holds the final configuration after applying all priority
// rules.
type ResolvedConfig struct {
	Quiet      bool
	Theme      string
	NoColor    bool
	StatusLine string
	CI         bool
	Debug      bool

	// Resolution metadata (for debugging): "cli", "env", "file" or "default"
	QuietSource      string
	ThemeSource      string
	NoColorSource    string
	StatusLineSource string
	ConfigPath       string
}

// ResolveConfig resolves configuration with priority CLI > env > file >
// defaults. cliFlags.ConfigFile, when set, replaces the file lookup and must
// exist.
func ResolveConfig(cliFlags CliFlags) (*ResolvedConfig, error) {
	appCfg := LoadConfig()
	if cliFlags.ConfigFile != "" {
		var err error
		if appCfg, err = LoadConfigFile(cliFlags.ConfigFile); err != nil {
			return nil, err
		}
	}
	return Resolve(cliFlags, appCfg)
}

// Resolve applies CLI flags and environment variables on top of appCfg.
func Resolve(cliFlags CliFlags, appCfg *AppConfig) (*ResolvedConfig, error) {
	if appCfg == nil {
		appCfg = DefaultConfig()
	}
	base := "file"
	if appCfg.Path() == "" {
		base = "default"
	}

	resolved := &ResolvedConfig{
		Quiet:            appCfg.Quiet,
		Theme:            appCfg.Theme,
		NoColor:          appCfg.NoColor,
		StatusLine:       appCfg.StatusLine,
		CI:               appCfg.CI,
		Debug:            appCfg.Debug,
		QuietSource:      base,
		ThemeSource:      base,
		NoColorSource:    base,
		StatusLineSource: base,
		ConfigPath:       appCfg.Path(),
	}

	switch {
	case cliFlags.QuietSet:
		resolved.Quiet, resolved.QuietSource = cliFlags.Quiet, "cli"
	case getEnvBool("TAPMONKEY_QUIET") != nil:
		resolved.Quiet, resolved.QuietSource = *getEnvBool("TAPMONKEY_QUIET"), "env"
	}

	switch {
	case cliFlags.ThemeName != "":
		resolved.Theme, resolved.ThemeSource = cliFlags.ThemeName, "cli"
	case os.Getenv("TAPMONKEY_THEME") != "":
		resolved.Theme, resolved.ThemeSource = os.Getenv("TAPMONKEY_THEME"), "env"
	}

	switch {
	case cliFlags.NoColorSet:
		resolved.NoColor, resolved.NoColorSource = cliFlags.NoColor, "cli"
	case getEnvBool("TAPMONKEY_NO_COLOR") != nil:
		resolved.NoColor, resolved.NoColorSource = *getEnvBool("TAPMONKEY_NO_COLOR"), "env"
	case os.Getenv("NO_COLOR") != "":
		// https://no-color.org: any non-empty value disables color.
		resolved.NoColor, resolved.NoColorSource = true, "env"
	}

	switch {
	case cliFlags.StatusLine != "":
		resolved.StatusLine, resolved.StatusLineSource = cliFlags.StatusLine, "cli"
	case os.Getenv("TAPMONKEY_STATUS_LINE") != "":
		resolved.StatusLine, resolved.StatusLineSource = os.Getenv("TAPMONKEY_STATUS_LINE"), "env"
	}

	if cliFlags.CISet {
		resolved.CI = cliFlags.CI
	} else if ci := getEnvBool("TAPMONKEY_CI", "CI"); ci != nil {
		resolved.CI = *ci
	}

	if cliFlags.DebugSet {
		resolved.Debug = cliFlags.Debug
	} else if os.Getenv("TAPMONKEY_DEBUG") != "" {
		resolved.Debug = true
	}

	if resolved.CI {
		resolved.NoColor = true
		resolved.StatusLine = StatusLineNone
	}

	if err := validateResolvedConfig(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return resolved, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set to a parsable value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func validateResolvedConfig(cfg *ResolvedConfig) error {
	if !slices.Contains(stream.ThemeNames(), cfg.Theme) {
		return fmt.Errorf("invalid theme %q (must be one of: %v)", cfg.Theme, stream.ThemeNames())
	}
	switch cfg.StatusLine {
	case StatusLineTicker, StatusLineTea, StatusLineNone:
	default:
		return fmt.Errorf("invalid status_line %q (must be: ticker, tea, none)", cfg.StatusLine)
	}
	return nil
}
