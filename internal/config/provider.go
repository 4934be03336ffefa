// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath names the file to read; it must exist when set.
		ConfigFilePath string
		// ConfigDirPath replaces the platform configuration directory.
		ConfigDirPath string
	}

	// Provider produces the effective configuration for one invocation.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// ProviderFunc adapts a function to Provider.
	ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)
)

// Load implements Provider.
func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

// NewProvider returns the provider that layers defaults, the CUE file and
// OVFCONV_* environment variables.
func NewProvider() Provider {
	return ProviderFunc(loadWithOptions)
}

// Static returns a Provider that ignores its options and yields a copy of
// cfg on every call.
func Static(cfg *Config) Provider {
	return ProviderFunc(func(context.Context, LoadOptions) (*Config, error) {
		c := *cfg
		c.Verify.Algorithms = append([]string(nil), cfg.Verify.Algorithms...)
		return &c, nil
	})
}
