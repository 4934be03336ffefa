// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ovfconv/ovfconv/internal/handoff"
)

type inspectOptions struct {
	format    string
	verify    bool
	outputDir string
}

// newInspectCommand creates the `ovfconv inspect` command.
func newInspectCommand(app *App, root *rootOptions) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <envelope.ovf>",
		Short: "Resolve an OVF package and show the result",
		Long: `Resolve an OVF package and show its disk, backing files and networks.

With --format json or --format toml the conversion plan is printed instead,
for consumption by provisioning tooling. Verification is off unless --verify
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, app, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json, toml)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "verify backing files against the manifest")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for converted images (overrides config)")

	return cmd
}

func runInspect(cmd *cobra.Command, app *App, root *rootOptions, opts *inspectOptions, envelope string) error {
	var planFormat handoff.PlanFormat
	if opts.format != "text" {
		f, err := handoff.ParsePlanFormat(opts.format)
		if err != nil {
			return err
		}
		planFormat = f
	}

	cfg, err := app.loadConfig(cmd.Context(), root)
	if err != nil {
		return fail(cmd, err, root.verbose, glamourStyle(nil))
	}

	pkg, err := app.resolve(cmd.Context(), cfg, app.newLogger(root.verbose), resolveRequest{
		envelope:  envelope,
		verify:    opts.verify,
		outputDir: opts.outputDir,
	})
	if err != nil {
		return fail(cmd, err, root.verbose, glamourStyle(cfg))
	}

	if planFormat != "" {
		if err := handoff.WritePlan(cmd.OutOrStdout(), pkg, planFormat); err != nil {
			return fail(cmd, err, root.verbose, glamourStyle(cfg))
		}
	} else {
		renderPackage(cmd.OutOrStdout(), pkg)
	}

	if !pkg.IntegrityOK() {
		return fail(cmd, pkg.Integrity.Err(), root.verbose, glamourStyle(cfg))
	}
	return nil
}
