// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/ovfconv/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/ovfconv/config.cue on macOS, %APPDATA%\ovfconv\config.cue
// on Windows), falling back to ./config.cue. Every key can be overridden with an
// OVFCONV_ environment variable (e.g. OVFCONV_VERIFY_CONCURRENCY=8).
//
// Configuration files are validated against an embedded CUE schema (config_schema.cue)
// before being merged over the built-in defaults.
package config
