// SPDX-License-Identifier: MPL-2.0

package integrity

import (
	"errors"

	"github.com/ovfconv/ovfconv/pkg/manifest"
	"github.com/ovfconv/ovfconv/pkg/types"
)

// Outcome statuses for a single manifest entry.
const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type (
	// Status is the outcome of checking one manifest entry.
	Status string

	// Result is the outcome for one manifest entry.
	Result struct {
		Entry manifest.Entry
		// Path is the file that was digested.
		Path   types.FilesystemPath
		Status Status
		// Actual is the computed hex digest; empty if the file was not read.
		Actual string
		// Err is set when Status is StatusFailed.
		Err error
	}

	// Report is the aggregate outcome of a verification pass.
	Report struct {
		// ManifestPath is the manifest that was looked for.
		ManifestPath types.FilesystemPath
		// ManifestFound is false when the package has no manifest; that is
		// not a failure.
		ManifestFound bool
		// Results holds one entry per manifest line, in manifest order.
		// Entries never scheduled because of cancellation are StatusSkipped.
		Results []Result
	}
)

// Failures returns every per-file error in manifest order.
func (r *Report) Failures() []error {
	var out []error
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res.Err)
		}
	}
	return out
}

// Mismatches returns only the digest mismatches.
func (r *Report) Mismatches() []*DigestMismatchError {
	var out []*DigestMismatchError
	for _, err := range r.Failures() {
		var m *DigestMismatchError
		if errors.As(err, &m) {
			out = append(out, m)
		}
	}
	return out
}

// Verified counts the entries whose digest matched.
func (r *Report) Verified() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusOK {
			n++
		}
	}
	return n
}

// OK reports whether no entry failed.
func (r *Report) OK() bool { return len(r.Failures()) == 0 }

// Err joins every per-file failure, or returns nil.
func (r *Report) Err() error { return errors.Join(r.Failures()...) }
