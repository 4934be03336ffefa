// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette shared by all CLI output.
const (
	colorAccent = lipgloss.Color("#7C3AED")
	colorMuted  = lipgloss.Color("#6B7280")
	colorPass   = lipgloss.Color("#10B981")
	colorFail   = lipgloss.Color("#EF4444")
	colorWarn   = lipgloss.Color("#F59E0B")
	colorPath   = lipgloss.Color("#3B82F6")
)

// Status glyphs printed in front of per-file and summary lines.
const (
	successIcon = "✓"
	failIcon    = "✗"
	warnIcon    = "!"
	skipIcon    = "-"
)

var (
	// TitleStyle renders section headers ("Disk", "Integrity").
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// SubtitleStyle renders labels and de-emphasized values such as raw format URLs.
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// SuccessStyle renders verified files and completed conversions.
	SuccessStyle = lipgloss.NewStyle().Foreground(colorPass)

	// ErrorStyle renders failures.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFail)

	// WarningStyle renders skipped checks and unrecognized values.
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarn)

	// ValueStyle renders paths, ids and command lines.
	ValueStyle = lipgloss.NewStyle().Foreground(colorPath)

	// labelStyle pads field labels so values line up in a column.
	labelStyle = SubtitleStyle.Width(10)
)
