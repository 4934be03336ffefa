// SPDX-License-Identifier: MPL-2.0

// Package integrity checks an OVF package's backing files against its
// manifest.
//
// Digests are computed by a fixed-size worker pool. Every manifest entry is
// checked and every failure is reported: a mismatch on one file never stops
// the others. The pool is always joined before Verify returns, including when
// the caller cancels the context.
package integrity
