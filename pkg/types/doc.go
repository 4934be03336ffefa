// SPDX-License-Identifier: MPL-2.0

// Package types holds small typed primitives shared across ovfconv packages.
// Each type validates itself so callers can reject bad values at the boundary
// where they enter the program.
package types
