// SPDX-License-Identifier: MPL-2.0

// Package config loads the skillforge configuration with Viper.
//
// The file format is TOML. Configuration is read from the path given with
// --config, otherwise from config.toml in the platform configuration
// directory ($XDG_CONFIG_HOME/skillforge on Linux, ~/Library/Application
// Support/skillforge on macOS, %APPDATA%\skillforge on Windows), otherwise
// from ./skillforge.toml. Missing files are not an error: the defaults are
// used.
//
// Every file is checked against an embedded CUE schema (config_schema.cue)
// before it is merged, so typos in keys and out-of-range values are
// reported with their path instead of being silently ignored.
package config
