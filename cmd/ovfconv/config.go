// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovfconv/ovfconv/internal/config"
	"github.com/ovfconv/ovfconv/internal/issue"
)

// newConfigCommand creates the `ovfconv config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, root *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ovfconv configuration",
		Long: `Manage ovfconv configuration.

Configuration is stored in:
  - Linux: ~/.config/ovfconv/config.cue
  - macOS: ~/Library/Application Support/ovfconv/config.cue
  - Windows: %APPDATA%\ovfconv\config.cue

Every setting can be overridden with an OVFCONV_* environment variable,
e.g. OVFCONV_VERIFY_CONCURRENCY=8.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return fail(cmd, err, root.verbose, glamourStyle(nil))
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultFilePath(app.configDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, app, root, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, root *rootOptions) error {
	cfg, err := app.loadConfig(cmd.Context(), root)
	if err != nil {
		return fail(cmd, err, root.verbose, glamourStyle(nil))
	}

	w := cmd.OutOrStdout()
	keyStyle := ValueStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfg.SourcePath != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfg.SourcePath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("output"))
	fmt.Fprintf(w, "  dir: %s\n", valueStyle.Render(cfg.Output.Dir))
	fmt.Fprintf(w, "  extension: %s\n", valueStyle.Render(cfg.Output.Extension))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("verify"))
	fmt.Fprintf(w, "  enabled: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Verify.Enabled)))
	fmt.Fprintf(w, "  concurrency: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Verify.Concurrency)))
	timeout := SubtitleStyle.Render("(none)")
	if cfg.Verify.Timeout > 0 {
		timeout = valueStyle.Render(cfg.Verify.Timeout.String())
	}
	fmt.Fprintf(w, "  timeout: %s\n", timeout)
	algorithms := SubtitleStyle.Render("(any SHA family)")
	if len(cfg.Verify.Algorithms) > 0 {
		algorithms = valueStyle.Render(strings.Join(cfg.Verify.Algorithms, ", "))
	}
	fmt.Fprintf(w, "  algorithms: %s\n", algorithms)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("convert"))
	command := SubtitleStyle.Render("(not configured)")
	if cfg.Convert.Command != "" {
		command = valueStyle.Render(cfg.Convert.Command)
	}
	fmt.Fprintf(w, "  command: %s\n", command)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig(cmd *cobra.Command, app *App, root *rootOptions, force bool) error {
	path := root.configPath
	if path == "" {
		p, err := config.DefaultFilePath(app.configDir)
		if err != nil {
			return err
		}
		path = p
	}

	written, err := config.WriteDefault(path, force)
	if err != nil {
		err = issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path).
			WithSuggestion("Check that the directory is writable").
			Wrap(err).
			BuildError()
		return fail(cmd, err, root.verbose, glamourStyle(nil))
	}

	w := cmd.OutOrStdout()
	if !written {
		fmt.Fprintf(w, "%s Configuration already exists at %s (use --force to overwrite)\n",
			WarningStyle.Render(warnIcon), path)
		return nil
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render(successIcon), path)
	return nil
}
