// SPDX-License-Identifier: MPL-2.0

// Package resolve runs the package resolution pipeline: parse the envelope,
// resolve file and disk references, resolve networks, and optionally verify
// backing-file integrity. The resulting Package is what the conversion and
// provisioning collaborators consume.
package resolve
