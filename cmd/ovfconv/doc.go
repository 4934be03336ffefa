// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for ovfconv.
//
// This package implements the Cobra command hierarchy: inspect, verify and
// convert drive the package resolution pipeline, and config manages the
// configuration file.
package cmd
