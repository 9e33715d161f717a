// Package config handles configuration loading and merging for tapmonkey.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--quiet, --theme, --no-color, --status-line, --ci, --debug)
//  2. Environment variables (TAPMONKEY_QUIET, TAPMONKEY_THEME, NO_COLOR, CI, ...)
//  3. YAML config file (.tapmonkey.yaml in the working directory or
//     ~/.config/tapmonkey/.tapmonkey.yaml)
//  4. Hardcoded defaults
//
// # CI Mode Behavior
//
// When CI mode is enabled (via --ci, CI=true, or ci: true in YAML) colors
// are disabled and the animated status line is replaced by nothing, so log
// files only contain permanent output.
//
// # Environment Variables
//
//   - TAPMONKEY_QUIET: "true" or "1" hides per-test progress
//   - TAPMONKEY_THEME: default, orca or mono
//   - TAPMONKEY_NO_COLOR or NO_COLOR: any value disables colors
//   - TAPMONKEY_STATUS_LINE: ticker, tea or none
//   - TAPMONKEY_CI or CI: "true" or "1" enables CI mode
//   - TAPMONKEY_DEBUG: any non-empty value enables debug logging
package config
