// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/skillforge/skillforge/internal/issue"
	"github.com/skillforge/skillforge/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "skillforge"
	// ConfigFileName is the name of the config file in ConfigDir.
	ConfigFileName = "config.toml"
	// LocalConfigFileName is the project-local config file name.
	LocalConfigFileName = "skillforge.toml"
)

//go:embed config_schema.cue
var configSchema []byte

// ErrConfigNotFound is returned when an explicit config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ConfigDir returns the skillforge configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the path of the global config file.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadWithSource loads the configuration and reports which file, if any,
// was merged over the defaults.
func LoadWithSource(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	path, err := resolvePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := mergeFile(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid TOML").
				WithSuggestion("Verify the configuration keys and values match the expected schema").
				WithSuggestion("Run 'skillforge config show' to see the effective configuration").
				WithGuide(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &Loaded{Config: &cfg, Path: path}, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color", defaults.UI.Color)
	v.SetDefault("audit.skills_dir", defaults.Audit.SkillsDir)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMillis)
	v.SetDefault("scaffold.output_dir", defaults.Scaffold.OutputDir)
	v.SetDefault("scaffold.archetype", defaults.Scaffold.Archetype)
	v.SetDefault("scaffold.risk", defaults.Scaffold.Risk)
	v.SetDefault("policy.allowed_tools", defaults.Policy.AllowedTools)
	v.SetDefault("policy.archetypes_requiring_deps", defaults.Policy.ArchetypesRequiringDeps)
	v.SetDefault("policy.max_description_length", defaults.Policy.MaxDescriptionLength)
	v.SetDefault("policy.dependency_hints", defaults.Policy.DependencyHints)
}

// resolvePath picks the file to load: the explicit path, then the global
// config file, then the local one. It returns "" when neither exists.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'skillforge config init' to create a configuration file").
				WithGuide(issue.ConfigLoadFailedId).
				Wrap(ErrConfigNotFound).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if global := filepath.Join(cfgDir, ConfigFileName); fileExists(global) {
		return global, nil
	}

	if local := filepath.Join(opts.WorkDir, LocalConfigFileName); fileExists(local) {
		return local, nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// mergeFile decodes a TOML file, checks it against the #Config schema and
// merges it into v over the defaults.
func mergeFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return describeTOMLError(err)
	}
	if values == nil {
		values = map[string]any{}
	}

	// TOML tables become JSON objects, which CUE reads natively.
	asJSON, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to convert config for validation: %w", err)
	}
	violations, err := cueutil.Check(configSchema, asJSON, "#Config", cueutil.WithFilename(path), cueutil.WithConcrete())
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.Error()
		}
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func describeTOMLError(err error) error {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("invalid TOML at line %d, column %d: %w", row, col, err)
	}
	return fmt.Errorf("invalid TOML: %w", err)
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// Encode renders cfg as a TOML document.
func Encode(cfg *Config) ([]byte, error) {
	body, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	header := "# skillforge configuration\n# Every key is optional; omitted keys keep their built-in defaults.\n\n"
	return append([]byte(header), body...), nil
}

// WriteDefault writes the default configuration to path. An existing file
// is left alone unless force is set. It reports whether the file was
// written.
func WriteDefault(path string, force bool) (bool, error) {
	if !force && fileExists(path) {
		return false, nil
	}

	data, err := Encode(DefaultConfig())
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
