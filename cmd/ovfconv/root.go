// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ovfconv/ovfconv/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ovfconv",
		Short: "Resolve, verify and convert OVF packages",
		Long: TitleStyle.Render("ovfconv") + SubtitleStyle.Render(" - Resolve, verify and convert OVF packages") + `

ovfconv reads an OVF envelope, resolves its disk, backing files and
networks, checks the backing files against the package manifest, and
hands the disk to an image converter.

` + SubtitleStyle.Render("Examples:") + `
  ovfconv inspect vm.ovf             Show the resolved package
  ovfconv inspect vm.ovf -f json     Emit the conversion plan as JSON
  ovfconv verify vm.ovf              Check backing files against vm.mf
  ovfconv convert vm.ovf -o images   Convert the disk into ./images
  ovfconv config show                Show current configuration`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/ovfconv/config.cue)")

	rootCmd.AddCommand(newInspectCommand(app, opts))
	rootCmd.AddCommand(newVerifyCommand(app, opts))
	rootCmd.AddCommand(newConvertCommand(app, opts))
	rootCmd.AddCommand(newConfigCommand(app, opts))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(int(types.ExitFailure))
	}

	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}
