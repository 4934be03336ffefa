// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/ovfconv/ovfconv/internal/config"
	"github.com/ovfconv/ovfconv/internal/integrity"
	"github.com/ovfconv/ovfconv/internal/resolve"
)

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil {
		return "dark"
	}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// renderPackage writes the human-readable view of a resolved package.
func renderPackage(w io.Writer, pkg *resolve.Package) {
	fmt.Fprintln(w, TitleStyle.Render("OVF Package"))
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Envelope"), ValueStyle.Render(pkg.EnvelopePath.String()))
	fmt.Fprintln(w)

	d := pkg.Disk
	format := string(d.Format)
	if format == "" {
		format = WarningStyle.Render("unrecognized")
	}
	fmt.Fprintln(w, TitleStyle.Render("Disk"))
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("ID"), d.DiskID)
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Format"), format)
	if d.RawFormat != "" {
		fmt.Fprintf(w, "%s%s\n", labelStyle.Render(""), SubtitleStyle.Render(d.RawFormat))
	}
	fmt.Fprintf(w, "%s%s (%s bytes, %d MiB image)\n", labelStyle.Render("Capacity"),
		d.CapacityBytes.Human(), d.CapacityBytes, pkg.ImageSizeMiB())
	file := pkg.DiskFile()
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Source"), ValueStyle.Render(file.SourcePath.String()))
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Output"), ValueStyle.Render(file.OutputPath.String()))
	fmt.Fprintln(w)

	fmt.Fprintln(w, TitleStyle.Render("Files"))
	for _, f := range pkg.Files {
		size := SubtitleStyle.Render("size not declared")
		if f.SizeBytes > 0 {
			size = f.SizeBytes.Human()
		}
		fmt.Fprintf(w, "  %s %s  %s\n", f.ID, ValueStyle.Render(f.Href), size)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, TitleStyle.Render("Networks"))
	if len(pkg.Networks) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  (none)"))
	}
	for _, n := range pkg.Networks {
		fmt.Fprintf(w, "  %s  %s\n", n.SyntheticName, n.Description)
	}

	if pkg.Integrity != nil {
		fmt.Fprintln(w)
		renderIntegrity(w, pkg.Integrity)
	}
}

// renderIntegrity writes one line per manifest entry followed by a summary.
func renderIntegrity(w io.Writer, report *integrity.Report) {
	fmt.Fprintln(w, TitleStyle.Render("Integrity"))
	if !report.ManifestFound {
		fmt.Fprintf(w, "%s no manifest at %s; nothing to verify\n",
			WarningStyle.Render(warnIcon), ValueStyle.Render(report.ManifestPath.String()))
		return
	}
	fmt.Fprintf(w, "%s%s\n", labelStyle.Render("Manifest"), ValueStyle.Render(report.ManifestPath.String()))

	for _, res := range report.Results {
		switch res.Status {
		case integrity.StatusOK:
			fmt.Fprintf(w, "  %s %s %s\n", SuccessStyle.Render(successIcon), res.Entry.Filename,
				SubtitleStyle.Render("("+res.Entry.Algorithm+")"))
		case integrity.StatusFailed:
			fmt.Fprintf(w, "  %s %s: %v\n", ErrorStyle.Render(failIcon), res.Entry.Filename, res.Err)
		default:
			fmt.Fprintf(w, "  %s %s %s\n", WarningStyle.Render(skipIcon), res.Entry.Filename,
				SubtitleStyle.Render("(skipped)"))
		}
	}

	failures := len(report.Failures())
	summary := fmt.Sprintf("%d of %d file(s) verified", report.Verified(), len(report.Results))
	if failures > 0 {
		fmt.Fprintf(w, "%s %s, %d failed\n", ErrorStyle.Render(failIcon), summary, failures)
		return
	}
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render(successIcon), summary)
}
