// SPDX-License-Identifier: MPL-2.0

// Package uat drives Unreal's automation tool (RunUAT) as an opaque
// external build step. modkit only cares about the exit code; tool
// output is forwarded to the log, never parsed.
package uat

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// BuildOptions describes one BuildCookRun invocation.
type BuildOptions struct {
	// ProjectFile is the absolute path to the .uproject file.
	ProjectFile string
	// Platform is the target platform (e.g. "Win64").
	Platform string
	// StagingDir is where the tool deposits its staged output.
	StagingDir string
	// UseIoStore adds -iostore to produce .utoc/.ucas companions.
	UseIoStore bool
	// CookDir, when non-empty, restricts cooking to the mod's content
	// directory.
	CookDir string
}

// RunError reports a non-zero exit from the automation tool.
type RunError struct {
	Code int
}

func (e *RunError) Error() string {
	return fmt.Sprintf("automation tool exited with code %d", e.Code)
}

// ScriptPath locates the RunUAT launcher under the engine directory and
// verifies it exists.
func ScriptPath(engineDir string) (string, error) {
	name := "RunUAT.sh"
	if runtime.GOOS == "windows" {
		name = "RunUAT.bat"
	}
	path := filepath.Join(engineDir, "Build", "BatchFiles", name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("automation tool not found at %s: %w", path, err)
	}
	return path, nil
}

// Args assembles the BuildCookRun argument list for one mod build.
func Args(opts BuildOptions) []string {
	args := []string{
		"BuildCookRun",
		"-project=" + opts.ProjectFile,
		"-platform=" + opts.Platform,
		"-clientconfig=Shipping",
		"-cook",
		"-stage",
		"-stagingdirectory=" + opts.StagingDir,
		"-package",
		"-pak",
	}
	if opts.UseIoStore {
		args = append(args, "-iostore")
	}
	if opts.CookDir != "" {
		args = append(args, "-CookDir="+opts.CookDir)
	}
	args = append(args,
		"-NoP4",
		"-build",
		"-utf8output",
		"-unattended",
		"-nodebuginfo",
	)
	return args
}

// Run executes the automation tool and blocks until it exits. Captured
// stdout is logged at info level; stderr at warn on success and error
// on failure. A non-zero exit returns a RunError.
func Run(ctx context.Context, script string, args []string) error {
	log.Info("running automation tool", "script", script)
	log.Debug("automation tool arguments", "args", args)

	cmd := exec.CommandContext(ctx, script, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	code := 0
	if runErr != nil {
		code = -1
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
	}

	if stdout.Len() > 0 {
		log.Info("automation tool output", "stdout", stdout.String())
	}
	if stderr.Len() > 0 {
		if code != 0 {
			log.Error("automation tool errors", "stderr", stderr.String())
		} else {
			log.Warn("automation tool warnings", "stderr", stderr.String())
		}
	}

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); ok {
			return &RunError{Code: code}
		}
		return fmt.Errorf("failed to start automation tool: %w", runErr)
	}

	log.Info("automation tool finished", "code", 0)
	return nil
}
