// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"crypto/sha1"     //nolint:gosec // SHA-1 is what OVF 1.x manifests declare
	_ "crypto/sha256" // registers SHA-256 for go-digest
	_ "crypto/sha512" // registers SHA-384 and SHA-512 for go-digest
	"errors"
	"fmt"
	"hash"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
)

// SHA-family algorithm names, in their canonical lower-case form.
const (
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA384 Algorithm = "sha384"
	SHA512 Algorithm = "sha512"
)

// ErrUnsupportedAlgorithm is the sentinel wrapped by UnsupportedAlgorithmError.
var ErrUnsupportedAlgorithm = errors.New("unsupported digest algorithm")

type (
	// Algorithm names a digest algorithm of the SHA family.
	Algorithm string

	// UnsupportedAlgorithmError is returned when a manifest entry names an
	// algorithm outside the SHA family or outside the configured allowlist.
	UnsupportedAlgorithmError struct {
		Algorithm string
		Filename  string
	}
)

// Error implements the error interface.
func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("%s: unsupported digest algorithm %q", e.Filename, e.Algorithm)
}

// Unwrap returns ErrUnsupportedAlgorithm for errors.Is() compatibility.
func (e *UnsupportedAlgorithmError) Unwrap() error { return ErrUnsupportedAlgorithm }

// hashers maps each algorithm to its constructor. SHA-2 members come from
// go-digest so they share the registrations used for OCI content digests.
var hashers = map[Algorithm]func() hash.Hash{
	SHA1:   sha1.New,
	SHA256: digest.SHA256.Hash,
	SHA384: digest.SHA384.Hash,
	SHA512: digest.SHA512.Hash,
}

// Algorithms returns every supported algorithm, sorted.
func Algorithms() []Algorithm {
	out := make([]Algorithm, 0, len(hashers))
	for a := range hashers {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// ParseAlgorithm maps a manifest algorithm name ("SHA1", "sha256") to an
// Algorithm. Matching is case-insensitive.
func ParseAlgorithm(name string) (Algorithm, bool) {
	a := Algorithm(strings.ToLower(name))
	_, ok := hashers[a]
	return a, ok
}

// New returns a fresh hash for a, or nil if a is not supported.
func (a Algorithm) New() hash.Hash {
	if fn, ok := hashers[a]; ok {
		return fn()
	}
	return nil
}

// Validate returns an error when a is not a supported algorithm.
func (a Algorithm) Validate() error {
	if _, ok := hashers[a]; !ok {
		return &UnsupportedAlgorithmError{Algorithm: string(a)}
	}
	return nil
}

// String returns the algorithm name.
func (a Algorithm) String() string { return string(a) }
