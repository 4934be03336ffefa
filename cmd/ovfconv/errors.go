// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ovfconv/ovfconv/internal/handoff"
	"github.com/ovfconv/ovfconv/internal/integrity"
	"github.com/ovfconv/ovfconv/internal/issue"
	"github.com/ovfconv/ovfconv/pkg/manifest"
	"github.com/ovfconv/ovfconv/pkg/ovf"
	"github.com/ovfconv/ovfconv/pkg/types"
)

// ExitError carries the process exit status out of a RunE handler. Err is
// the failure that was already rendered, kept for errors.Is/As.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the rendered failure.
func (e *ExitError) Unwrap() error { return e.Err }

// classifyError maps pipeline failures to issue catalog IDs and returns a
// styled message for CLI rendering. A zero ID means no catalog entry applies.
func classifyError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	var ae *issue.ActionableError
	switch {
	case errors.As(err, &ae) && ae.IssueID != 0:
		issueID = ae.IssueID
	// Integrity failures wrap the underlying os error, so they go first.
	case errors.Is(err, integrity.ErrDigestMismatch), errors.Is(err, integrity.ErrFileAccess):
		issueID = issue.IntegrityFailedId
	case errors.Is(err, os.ErrPermission):
		issueID = issue.PermissionDeniedId
	case errors.Is(err, os.ErrNotExist):
		issueID = issue.FileNotFoundId
	case errors.Is(err, ovf.ErrParse):
		issueID = issue.EnvelopeParseErrorId
	case errors.Is(err, ovf.ErrUnsupportedReference):
		issueID = issue.RemoteReferenceId
	case errors.Is(err, ovf.ErrUnsupportedConfiguration):
		issueID = issue.UnsupportedConfigurationId
	case errors.Is(err, ovf.ErrResolution):
		issueID = issue.InvalidEnvelopeId
	case errors.Is(err, manifest.ErrManifestFormat):
		issueID = issue.ManifestMalformedId
	case errors.Is(err, handoff.ErrNoConverter):
		issueID = issue.ConverterNotConfiguredId
	case errors.Is(err, handoff.ErrConversionFailed):
		issueID = issue.ConversionFailedId
	case errors.As(err, &ae) && (ae.Operation == "load configuration" || ae.Operation == "validate configuration"):
		issueID = issue.ConfigLoadFailedId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method for rich output.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError prints the styled error and, when the catalog has one, the
// matching guidance rendered in the given glamour style.
func renderError(stderr io.Writer, err error, verbose bool, style string) {
	issueID, styled := classifyError(err, verbose)
	fmt.Fprint(stderr, styled)

	if issueID == 0 {
		return
	}
	if entry := issue.Get(issueID); entry != nil {
		rendered, renderErr := entry.Render(style)
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", issueID, "error", renderErr)
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}

// fail renders err on the command's stderr and returns the ExitError that
// makes the process exit non-zero without printing the error a second time.
func fail(cmd *cobra.Command, err error, verbose bool, style string) error {
	renderError(cmd.ErrOrStderr(), err, verbose, style)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: types.ExitFailure, Err: err}
}
