// SPDX-License-Identifier: MPL-2.0

// Package manifest reads OVF manifest (.mf) files: one checksum per line in
// the form "SHA256(disk1.vmdk)= 3f2a...". It also owns the SHA-family digest
// algorithms used to check those lines.
package manifest
