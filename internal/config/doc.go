// SPDX-License-Identifier: MPL-2.0

// Package config loads modkit settings from a TOML config file, the
// MODKIT_* environment, and built-in defaults, in increasing order of
// precedence for environment over file over defaults.
package config
