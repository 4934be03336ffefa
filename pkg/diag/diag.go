// SPDX-License-Identifier: MPL-2.0

// Package diag carries structured, non-fatal diagnostics out of the resolution
// pipeline. Library code reports into a Sink instead of writing to a console,
// so callers decide how warnings are rendered and tests can assert on them.
package diag

import (
	"sync"

	"github.com/charmbracelet/log"
)

const (
	// SeverityWarning indicates a recoverable condition; the result is still usable.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal failure that the caller should surface.
	SeverityError Severity = "error"
)

// Codes reported by the resolution pipeline.
const (
	CodeCapacityUnitsUnparsed  = "capacity_units_unparsed"
	CodeDiskFormatUnrecognized = "disk_format_unrecognized"
	CodeHrefNotLocal           = "href_not_local"
	CodeManifestAbsent         = "manifest_absent"
)

type (
	// Severity is the diagnostic level.
	Severity string

	// Diagnostic is a single structured message.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "capacity_units_unparsed").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file associated with this diagnostic (optional).
		Path string
		// Cause is the underlying value for programmatic inspection (optional).
		Cause error
	}

	// Sink receives diagnostics. Implementations must be safe for concurrent use.
	Sink interface {
		Report(d Diagnostic)
	}

	// Collector is a Sink that keeps every diagnostic in arrival order.
	Collector struct {
		mu    sync.Mutex
		diags []Diagnostic
	}

	// LogSink forwards diagnostics to a charmbracelet logger.
	LogSink struct {
		Logger *log.Logger
	}

	tee []Sink

	discard struct{}
)

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

func (discard) Report(Diagnostic) {}

// Tee fans a diagnostic out to every non-nil sink.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t tee) Report(d Diagnostic) {
	for _, s := range t {
		s.Report(d)
	}
}

// Warn is shorthand for reporting a warning-level diagnostic.
func Warn(s Sink, code, msg, path string, cause error) {
	if s == nil {
		return
	}
	s.Report(Diagnostic{Severity: SeverityWarning, Code: code, Message: msg, Path: path, Cause: cause})
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements Sink.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// WithCode returns the collected diagnostics whose Code equals code.
func (c *Collector) WithCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Report implements Sink.
func (s LogSink) Report(d Diagnostic) {
	if s.Logger == nil {
		return
	}
	kv := []any{"code", d.Code}
	if d.Path != "" {
		kv = append(kv, "path", d.Path)
	}
	if d.Severity == SeverityError {
		s.Logger.Error(d.Message, kv...)
		return
	}
	s.Logger.Warn(d.Message, kv...)
}
