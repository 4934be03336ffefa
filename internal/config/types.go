// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ovfconv/ovfconv/internal/integrity"
	"github.com/ovfconv/ovfconv/pkg/manifest"
	"github.com/ovfconv/ovfconv/pkg/ovf"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	maxConcurrency = 64
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidOutputConfig is the sentinel error wrapped by InvalidOutputConfigError.
	ErrInvalidOutputConfig = errors.New("invalid output config")
	// ErrInvalidVerifyConfig is the sentinel error wrapped by InvalidVerifyConfigError.
	ErrInvalidVerifyConfig = errors.New("invalid verify config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidOutputConfigError is returned when an OutputConfig has invalid fields.
	InvalidOutputConfigError struct {
		FieldErrors []error
	}

	// InvalidVerifyConfigError is returned when a VerifyConfig has invalid fields.
	InvalidVerifyConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Output controls where converted images are written.
		Output OutputConfig `json:"output" mapstructure:"output"`
		// Verify controls manifest verification.
		Verify VerifyConfig `json:"verify" mapstructure:"verify"`
		// Convert configures the conversion hand-off.
		Convert ConvertConfig `json:"convert" mapstructure:"convert"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// SourcePath is the file the configuration was read from, or empty
		// when only defaults and environment overrides apply.
		SourcePath string `json:"-" mapstructure:"-"`
	}

	// OutputConfig controls converted image placement.
	OutputConfig struct {
		Dir       string `json:"dir" mapstructure:"dir"`
		Extension string `json:"extension" mapstructure:"extension"`
	}

	// VerifyConfig controls manifest verification.
	VerifyConfig struct {
		Enabled     bool          `json:"enabled" mapstructure:"enabled"`
		Concurrency int           `json:"concurrency" mapstructure:"concurrency"`
		Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
		// Algorithms is the digest allowlist; empty accepts the SHA family.
		Algorithms []string `json:"algorithms" mapstructure:"algorithms"`
	}

	// ConvertConfig configures the shell converter.
	ConvertConfig struct {
		Command string `json:"command" mapstructure:"command"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:       ".",
			Extension: ovf.DefaultOutputExt,
		},
		Verify: VerifyConfig{
			Enabled:     true,
			Concurrency: integrity.DefaultConcurrency,
			Timeout:     0,
			Algorithms:  []string{},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// DigestAlgorithms returns the configured allowlist in canonical form.
// Unknown names are skipped; IsValid reports them.
func (c VerifyConfig) DigestAlgorithms() []manifest.Algorithm {
	out := make([]manifest.Algorithm, 0, len(c.Algorithms))
	for _, name := range c.Algorithms {
		if alg, ok := manifest.ParseAlgorithm(name); ok {
			out = append(out, alg)
		}
	}
	return out
}

// Verifier builds an integrity verifier from the verify settings.
func (c VerifyConfig) Verifier() *integrity.Verifier {
	return &integrity.Verifier{
		Concurrency: c.Concurrency,
		Timeout:     c.Timeout,
		Algorithms:  c.DigestAlgorithms(),
	}
}

// IsValid returns whether the OutputConfig has valid fields.
func (c OutputConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Dir) == "" {
		errs = append(errs, errors.New("output.dir must not be empty"))
	}
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		errs = append(errs, fmt.Errorf("output.extension %q must start with a dot", c.Extension))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidOutputConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOutputConfigError.
func (e *InvalidOutputConfigError) Error() string {
	return fmt.Sprintf("invalid output config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidOutputConfig for errors.Is() compatibility.
func (e *InvalidOutputConfigError) Unwrap() error { return ErrInvalidOutputConfig }

// IsValid returns whether the VerifyConfig has valid fields.
func (c VerifyConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Concurrency < 1 || c.Concurrency > maxConcurrency {
		errs = append(errs, fmt.Errorf("verify.concurrency %d out of range [1, %d]", c.Concurrency, maxConcurrency))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("verify.timeout %s must not be negative", c.Timeout))
	}
	for _, name := range c.Algorithms {
		if _, ok := manifest.ParseAlgorithm(name); !ok {
			errs = append(errs, &manifest.UnsupportedAlgorithmError{Algorithm: name, Filename: "verify.algorithms"})
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidVerifyConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidVerifyConfigError.
func (e *InvalidVerifyConfigError) Error() string {
	return fmt.Sprintf("invalid verify config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidVerifyConfig for errors.Is() compatibility.
func (e *InvalidVerifyConfigError) Unwrap() error { return ErrInvalidVerifyConfig }

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether the Config has valid fields.
// It delegates to Output, Verify and UI. Convert accepts any command.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Verify.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}
