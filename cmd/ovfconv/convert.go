// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovfconv/ovfconv/internal/handoff"
	"github.com/ovfconv/ovfconv/internal/issue"
)

type convertOptions struct {
	outputDir  string
	command    string
	skipVerify bool
	dryRun     bool
}

// newConvertCommand creates the `ovfconv convert` command.
func newConvertCommand(app *App, root *rootOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <envelope.ovf>",
		Short: "Verify an OVF package and convert its disk",
		Long: `Resolve an OVF package, verify it against its manifest, and run the
configured converter command for its disk.

The converter runs in an embedded POSIX shell and receives the request in
the environment:

  OVF_FORMAT           source disk format (empty when unrecognized)
  OVF_SOURCE           backing file path
  OVF_OUTPUT           destination image path
  OVF_CAPACITY_BYTES   disk capacity in bytes
  OVF_IMAGE_SIZE_MIB   disk capacity in whole MiB

` + SubtitleStyle.Render("Examples:") + `
  ovfconv convert vm.ovf -o images
  ovfconv convert vm.ovf --command 'qemu-img convert -O raw "$OVF_SOURCE" "$OVF_OUTPUT"'
  ovfconv convert vm.ovf --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, app, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for converted images (overrides config)")
	cmd.Flags().StringVar(&opts.command, "command", "", "converter command (overrides config)")
	cmd.Flags().BoolVar(&opts.skipVerify, "skip-verify", false, "do not verify backing files against the manifest")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the conversion plan without running the converter")

	return cmd
}

func runConvert(cmd *cobra.Command, app *App, root *rootOptions, opts *convertOptions, envelope string) error {
	cfg, err := app.loadConfig(cmd.Context(), root)
	if err != nil {
		return fail(cmd, err, root.verbose, glamourStyle(nil))
	}
	style := glamourStyle(cfg)
	logger := app.newLogger(root.verbose)

	pkg, err := app.resolve(cmd.Context(), cfg, logger, resolveRequest{
		envelope:  envelope,
		verify:    cfg.Verify.Enabled && !opts.skipVerify,
		outputDir: opts.outputDir,
	})
	if err != nil {
		if pkg != nil && pkg.Integrity != nil {
			renderIntegrity(cmd.OutOrStdout(), pkg.Integrity)
		}
		return fail(cmd, err, root.verbose, style)
	}

	stdout := cmd.OutOrStdout()
	if !pkg.IntegrityOK() {
		renderIntegrity(stdout, pkg.Integrity)
		return fail(cmd, pkg.Integrity.Err(), root.verbose, style)
	}

	if opts.dryRun {
		if err := handoff.WritePlan(stdout, pkg, handoff.PlanTOML); err != nil {
			return fail(cmd, err, root.verbose, style)
		}
		return nil
	}

	command := cfg.Convert.Command
	if opts.command != "" {
		command = opts.command
	}
	if strings.TrimSpace(command) == "" {
		err := issue.NewErrorContext().
			WithOperation("convert disk").
			WithResource(envelope).
			WithSuggestion("Pass the converter with --command").
			WithSuggestion("Set convert.command in the configuration file ('ovfconv config path' shows where)").
			Wrap(handoff.ErrNoConverter).
			BuildError()
		return fail(cmd, err, root.verbose, style)
	}

	req := handoff.FromPackage(pkg)
	if err := os.MkdirAll(filepath.Dir(req.OutputPath.String()), 0o755); err != nil {
		return fail(cmd, fmt.Errorf("failed to create output directory: %w", err), root.verbose, style)
	}

	converter := &handoff.ShellConverter{
		Command: command,
		Stdout:  stdout,
		Stderr:  cmd.ErrOrStderr(),
		Logger:  logger,
	}
	if err := converter.Convert(cmd.Context(), req); err != nil {
		err = issue.NewErrorContext().
			WithOperation("convert disk").
			WithResource(req.SourcePath.String()).
			WithSuggestion("Run the command by hand with the OVF_* variables set to see its output").
			Wrap(err).
			BuildError()
		return fail(cmd, err, root.verbose, style)
	}

	fmt.Fprintf(stdout, "%s Converted %s to %s\n", SuccessStyle.Render(successIcon),
		ValueStyle.Render(req.SourcePath.String()), ValueStyle.Render(req.OutputPath.String()))
	return nil
}
