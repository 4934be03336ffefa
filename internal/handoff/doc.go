// SPDX-License-Identifier: MPL-2.0

// Package handoff passes a resolved package to the collaborators that do the
// actual work: the image converter (ConversionRequest, Converter) and the
// provisioning-metadata writer (Plan, WritePlan).
package handoff
