// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// WorkDir is where the local skillforge.toml is looked up. Defaults to
	// the current directory.
	WorkDir string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
	// Resolve returns the file Load would merge over the defaults, or ""
	// when none exists.
	Resolve(opts LoadOptions) (string, error)
}

// Loaded is a configuration together with the file it came from.
type Loaded struct {
	Config *Config
	// Path is the file that was merged over the defaults, or "" when only
	// the defaults apply.
	Path string
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	loaded, err := LoadWithSource(ctx, opts)
	if err != nil {
		return nil, err
	}
	return loaded.Config, nil
}

// Resolve reports which file Load would read.
func (p *fileProvider) Resolve(opts LoadOptions) (string, error) {
	return resolvePath(opts)
}
