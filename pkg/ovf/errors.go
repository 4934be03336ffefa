// SPDX-License-Identifier: MPL-2.0

package ovf

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution is wrapped by every error that stops reference resolution.
	ErrResolution = errors.New("envelope resolution failed")
	// ErrUnsupportedReference is the sentinel wrapped by UnsupportedReferenceError.
	ErrUnsupportedReference = errors.New("unsupported file reference")
	// ErrUnsupportedConfiguration is the sentinel wrapped by UnsupportedConfigurationError.
	ErrUnsupportedConfiguration = errors.New("unsupported package configuration")
	// ErrInvalidAttribute is the sentinel wrapped by InvalidAttributeError.
	ErrInvalidAttribute = errors.New("invalid envelope attribute")
	// ErrMissingFileReference is the sentinel wrapped by MissingFileReferenceError.
	ErrMissingFileReference = errors.New("disk references unknown file")
)

type (
	// UnsupportedReferenceError is returned when a File href carries a URI
	// scheme. Only files next to the envelope can be converted.
	UnsupportedReferenceError struct {
		FileID string
		Href   string
		Scheme string
	}

	// UnsupportedConfigurationError is returned when the package does not
	// declare exactly one disk.
	UnsupportedConfigurationError struct {
		DiskCount int
	}

	// InvalidAttributeError is returned when a required attribute is missing
	// or cannot be interpreted.
	InvalidAttributeError struct {
		Element   string
		ID        string
		Attribute string
		Value     string
		Reason    string
	}

	// MissingFileReferenceError is returned when a disk's fileRef names no
	// declared File.
	MissingFileReferenceError struct {
		DiskID  string
		FileRef string
	}
)

// Error implements the error interface.
func (e *UnsupportedReferenceError) Error() string {
	return fmt.Sprintf("file %q references %q with unsupported href scheme %q", e.FileID, e.Href, e.Scheme)
}

// Unwrap returns the sentinels for errors.Is() compatibility.
func (e *UnsupportedReferenceError) Unwrap() []error {
	return []error{ErrUnsupportedReference, ErrResolution}
}

// Error implements the error interface.
func (e *UnsupportedConfigurationError) Error() string {
	return fmt.Sprintf("package declares %d disks; exactly one is supported", e.DiskCount)
}

// Unwrap returns the sentinels for errors.Is() compatibility.
func (e *UnsupportedConfigurationError) Unwrap() []error {
	return []error{ErrUnsupportedConfiguration, ErrResolution}
}

// Error implements the error interface.
func (e *InvalidAttributeError) Error() string {
	where := e.Element
	if e.ID != "" {
		where = fmt.Sprintf("%s %q", e.Element, e.ID)
	}
	if e.Value == "" {
		return fmt.Sprintf("%s: attribute %s: %s", where, e.Attribute, e.Reason)
	}
	return fmt.Sprintf("%s: attribute %s=%q: %s", where, e.Attribute, e.Value, e.Reason)
}

// Unwrap returns the sentinels for errors.Is() compatibility.
func (e *InvalidAttributeError) Unwrap() []error {
	return []error{ErrInvalidAttribute, ErrResolution}
}

// Error implements the error interface.
func (e *MissingFileReferenceError) Error() string {
	return fmt.Sprintf("disk %q references file %q, which is not declared in References", e.DiskID, e.FileRef)
}

// Unwrap returns the sentinels for errors.Is() compatibility.
func (e *MissingFileReferenceError) Unwrap() []error {
	return []error{ErrMissingFileReference, ErrResolution}
}
