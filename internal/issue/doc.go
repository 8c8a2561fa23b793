// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, operator-facing errors. An
// ActionableError carries the operation that failed, the resource
// involved, and concrete suggestions for fixing the problem, so CLI
// handlers can render something more useful than a bare error string.
package issue
