// SPDX-License-Identifier: MPL-2.0

// Package ovf reads OVF envelopes and resolves the information needed to
// convert the package's single virtual disk.
//
// Parsing and resolution are separate steps. ParseBytes turns the XML into a
// generic section tree and performs no semantic checks. ResolveReferences and
// ResolveNetworks then build typed descriptors from that tree, enforcing the
// single-disk constraint, rejecting remote hrefs, and normalizing capacity
// allocation units. Non-fatal findings are reported to a diag.Sink rather
// than returned as errors.
package ovf
