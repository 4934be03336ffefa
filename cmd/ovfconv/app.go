// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ovfconv/ovfconv/internal/config"
	"github.com/ovfconv/ovfconv/internal/resolve"
	"github.com/ovfconv/ovfconv/pkg/diag"
	"github.com/ovfconv/ovfconv/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra command handler receives an App reference.
	App struct {
		Config ConfigProvider
		// configDir overrides the platform config directory when set.
		configDir string
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		ConfigDir string
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootOptions holds the persistent flags shared by every subcommand.
	rootOptions struct {
		verbose    bool
		configPath string
	}

	// resolveRequest is the per-invocation input to App.resolve.
	resolveRequest struct {
		envelope  string
		verify    bool
		outputDir string
	}
)

// NewApp creates a CLI app with the provided dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config:    deps.Config,
		configDir: deps.ConfigDir,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}, nil
}

// loadConfig loads the configuration honoring --config. The verbose flag
// is raised when the configuration enables it.
func (a *App) loadConfig(ctx context.Context, opts *rootOptions) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: opts.configPath,
		ConfigDirPath:  a.configDir,
	})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		opts.verbose = true
	}
	return cfg, nil
}

// newLogger returns the logger used for diagnostics and debug output.
func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// resolve runs the resolution pipeline for one envelope. Diagnostics are
// logged as they are reported.
func (a *App) resolve(ctx context.Context, cfg *config.Config, logger *log.Logger, req resolveRequest) (*resolve.Package, error) {
	outputDir := cfg.Output.Dir
	if req.outputDir != "" {
		outputDir = req.outputDir
	}

	verifier := cfg.Verify.Verifier()
	verifier.Logger = logger

	r := resolve.New(resolve.Options{
		OutputDir: types.FilesystemPath(outputDir),
		OutputExt: cfg.Output.Extension,
		Verify:    req.verify,
		Verifier:  verifier,
		Sink:      diag.LogSink{Logger: logger},
	})
	return r.Resolve(ctx, types.FilesystemPath(req.envelope))
}
