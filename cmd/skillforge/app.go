// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/skillforge/skillforge/internal/config"
	"github.com/skillforge/skillforge/pkg/skillcheck"
	"github.com/skillforge/skillforge/pkg/skillscaffold"
)

type (
	// App wires CLI services and the state shared by every command: global
	// flags, the loaded configuration and the logger.
	App struct {
		Config config.Provider

		verbose    bool
		configFile string

		cfg    *config.Config
		logger *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config: deps.Config,
		cfg:    config.DefaultConfig(),
		logger: log.New(io.Discard),
	}
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configFile}
}

// setup loads the configuration and builds the logger. A broken config
// file is reported as a warning and the defaults are used.
func (a *App) setup(ctx context.Context, stderr io.Writer) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		writeWarning(stderr, formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	applyColorMode(cfg.UI.Color)

	level := log.WarnLevel
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(stderr, log.Options{Prefix: "skillforge", Level: level})
	if err == nil {
		a.logger.Debug("configuration loaded", "skills_dir", cfg.Audit.SkillsDir, "color", cfg.UI.Color)
	}
}

func (a *App) checkOptions() []skillcheck.Option {
	return []skillcheck.Option{
		skillcheck.WithPolicy(a.cfg.ValidationPolicy()),
		skillcheck.WithLogger(a.logger),
	}
}

func (a *App) scaffoldOptions() []skillscaffold.Option {
	return []skillscaffold.Option{skillscaffold.WithLogger(a.logger)}
}
