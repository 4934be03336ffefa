// SPDX-License-Identifier: MPL-2.0

package integrity

import (
	"errors"
	"fmt"
)

var (
	// ErrDigestMismatch is the sentinel wrapped by DigestMismatchError.
	ErrDigestMismatch = errors.New("digest mismatch")
	// ErrFileAccess is the sentinel wrapped by FileAccessError.
	ErrFileAccess = errors.New("cannot read manifest-listed file")
	// ErrNotRegularFile is returned for a manifest-listed path that is a
	// directory, FIFO, device or socket.
	ErrNotRegularFile = errors.New("not a regular file")
)

type (
	// DigestMismatchError reports a backing file whose digest differs from
	// the manifest.
	DigestMismatchError struct {
		Filename  string
		Algorithm string
		Expected  string
		Actual    string
	}

	// FileAccessError reports a manifest-listed file that could not be read.
	FileAccessError struct {
		Filename string
		Err      error
	}
)

// Error implements the error interface.
func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("digest mismatch for file %s: %s expected %s, got %s",
		e.Filename, e.Algorithm, e.Expected, e.Actual)
}

// Unwrap returns ErrDigestMismatch for errors.Is() compatibility.
func (e *DigestMismatchError) Unwrap() error { return ErrDigestMismatch }

// Error implements the error interface.
func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Filename, e.Err)
}

// Unwrap returns both the sentinel and the underlying I/O error.
func (e *FileAccessError) Unwrap() []error { return []error{ErrFileAccess, e.Err} }
