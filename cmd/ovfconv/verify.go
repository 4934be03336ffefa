// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type verifyOptions struct {
	concurrency     int
	timeout         time.Duration
	requireManifest bool
}

// newVerifyCommand creates the `ovfconv verify` command.
func newVerifyCommand(app *App, root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <envelope.ovf>",
		Short: "Check backing files against the package manifest",
		Long: `Check every file listed in the package manifest (the envelope path with
a .mf extension) against its declared digest.

All files are checked; every failure is reported. A package without a
manifest passes unless --require-manifest is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, app, root, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "files digested at once (overrides config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "upper bound for the whole pass, e.g. 5m (overrides config)")
	cmd.Flags().BoolVar(&opts.requireManifest, "require-manifest", false, "fail when the package has no manifest")

	return cmd
}

func runVerify(cmd *cobra.Command, app *App, root *rootOptions, opts *verifyOptions, envelope string) error {
	cfg, err := app.loadConfig(cmd.Context(), root)
	if err != nil {
		return fail(cmd, err, root.verbose, glamourStyle(nil))
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Verify.Concurrency = opts.concurrency
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Verify.Timeout = opts.timeout
	}
	if ok, errs := cfg.Verify.IsValid(); !ok {
		return fail(cmd, errs[0], root.verbose, glamourStyle(cfg))
	}

	pkg, err := app.resolve(cmd.Context(), cfg, app.newLogger(root.verbose), resolveRequest{
		envelope: envelope,
		verify:   true,
	})
	if err != nil {
		if pkg != nil && pkg.Integrity != nil {
			renderIntegrity(cmd.OutOrStdout(), pkg.Integrity)
		}
		return fail(cmd, err, root.verbose, glamourStyle(cfg))
	}

	report := pkg.Integrity
	renderIntegrity(cmd.OutOrStdout(), report)

	if !report.ManifestFound && opts.requireManifest {
		return fail(cmd, fmt.Errorf("manifest %s is required: %w", report.ManifestPath, os.ErrNotExist), root.verbose, glamourStyle(cfg))
	}
	if !report.OK() {
		return fail(cmd, report.Err(), root.verbose, glamourStyle(cfg))
	}
	return nil
}
