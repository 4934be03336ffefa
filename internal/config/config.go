// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/ovfconv/ovfconv/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "ovfconv"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (OVFCONV_VERIFY_ENABLED, ...).
	EnvPrefix = "OVFCONV"

	// maxConfigFileSize bounds config files read from disk.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the ovfconv configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
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
	default: // Linux and others
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

// DefaultFilePath returns where the config file lives in dir, or in the
// platform config directory when dir is empty.
func DefaultFilePath(dir string) (string, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading. The precedence is:
// defaults, then the config file, then OVFCONV_* environment variables.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := locateConfigFile(opts)
	if err != nil {
		return nil, err
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'ovfconv config init' to write a fresh default file").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.SourcePath = resolvedPath

	// Environment overrides bypass the CUE schema, so the decoded values are
	// checked again here.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the values of any " + EnvPrefix + "_* environment variables").
			WithSuggestion("Run 'ovfconv config show' to see the effective configuration").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.extension", defaults.Output.Extension)
	v.SetDefault("verify.enabled", defaults.Verify.Enabled)
	v.SetDefault("verify.concurrency", defaults.Verify.Concurrency)
	v.SetDefault("verify.timeout", defaults.Verify.Timeout)
	v.SetDefault("verify.algorithms", defaults.Verify.Algorithms)
	v.SetDefault("convert.command", defaults.Convert.Command)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// locateConfigFile picks the config file to load. An explicit file must
// exist; otherwise the config directory and then the working directory are
// tried, and no file at all is not an error.
func locateConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'ovfconv config show' to see default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cuePath, err := DefaultFilePath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(cuePath) {
		return cuePath, nil
	}

	if opts.ConfigDirPath == "" {
		localCuePath := ConfigFileName + "." + ConfigFileExt
		if fileExists(localCuePath) {
			return localCuePath, nil
		}
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

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	// Unify with schema to validate against #Config definition
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left untouched unless force is set; the
// returned bool reports whether a file was written.
func WriteDefault(path string, force bool) (bool, error) {
	if !force && fileExists(path) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// ovfconv configuration file\n")
	sb.WriteString("// Every field is optional; environment variables prefixed with OVFCONV_ take precedence.\n")

	sb.WriteString("\noutput: {\n")
	fmt.Fprintf(&sb, "\tdir:       %q\n", cfg.Output.Dir)
	fmt.Fprintf(&sb, "\textension: %q\n", cfg.Output.Extension)
	sb.WriteString("}\n")

	sb.WriteString("\nverify: {\n")
	fmt.Fprintf(&sb, "\tenabled:     %v\n", cfg.Verify.Enabled)
	fmt.Fprintf(&sb, "\tconcurrency: %d\n", cfg.Verify.Concurrency)
	fmt.Fprintf(&sb, "\ttimeout:     %q\n", cfg.Verify.Timeout.String())
	sb.WriteString("\talgorithms: [")
	for i, alg := range cfg.Verify.Algorithms {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", alg)
	}
	sb.WriteString("]\n")
	sb.WriteString("}\n")

	sb.WriteString("\nconvert: {\n")
	fmt.Fprintf(&sb, "\tcommand: %q\n", cfg.Convert.Command)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
