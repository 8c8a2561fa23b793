// SPDX-License-Identifier: MPL-2.0

// Package notify delivers fire-and-forget outcome notifications for
// top-level operations. The pipeline invokes a Notifier exactly once
// per build or zip, on the terminal outcome.
package notify

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// Notifier receives one terminal outcome per top-level operation.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

// Terminal writes styled one-line notifications to a writer.
type Terminal struct {
	Out io.Writer
}

// NewTerminal creates a Terminal notifier writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{Out: out}
}

// Success prints a green success line.
func (t *Terminal) Success(msg string) {
	fmt.Fprintln(t.Out, successStyle.Render("✓ ")+msg)
}

// Failure prints a red failure line.
func (t *Terminal) Failure(msg string) {
	fmt.Fprintln(t.Out, failureStyle.Render("✗ ")+msg)
}

// OpenFolder opens a directory in the platform file browser. Best
// effort: the spawned process is not waited on.
func OpenFolder(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
