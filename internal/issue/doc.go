// SPDX-License-Identifier: MPL-2.0

// Package issue pairs pipeline failures with remediation guidance.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. The catalog maps each failure class (malformed
// envelope, remote reference, digest mismatch, missing converter, ...) to a
// Markdown page rendered with glamour.
package issue
