// SPDX-License-Identifier: MPL-2.0

// Package modbuild orchestrates the mod packaging pipeline: it drives
// the automation tool into a single-use staging session, resolves and
// stages the authoritative output, and optionally bundles the staged
// files into a zip. All failures are recovered here into an error plus
// exactly one notification per top-level operation.
package modbuild

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"

	"modkit/internal/config"
	"modkit/internal/issue"
	"modkit/internal/notify"
	"modkit/internal/staging"
	"modkit/internal/uat"
)

// Pipeline runs build and zip operations against one configuration.
// It is strictly sequential; concurrent invocations are not supported.
type Pipeline struct {
	Config   *config.Config
	Notifier notify.Notifier
}

// New creates a Pipeline.
func New(cfg *config.Config, n notify.Notifier) *Pipeline {
	return &Pipeline{Config: cfg, Notifier: n}
}

// BuildMod cooks, stages and installs one mod. The staging session
// directory is deleted on every exit path, success or failure, and the
// notifier fires exactly once with the terminal outcome.
func (p *Pipeline) BuildMod(ctx context.Context, modName string) error {
	if err := p.buildMod(ctx, modName); err != nil {
		p.Notifier.Failure(fmt.Sprintf("Build of mod '%s' failed: %v", modName, err))
		return err
	}
	p.Notifier.Success(fmt.Sprintf("Mod '%s' built successfully (%s)", modName, p.packagingMode()))
	return nil
}

func (p *Pipeline) buildMod(ctx context.Context, modName string) error {
	cfg := p.Config

	if cfg.ProjectFile == "" {
		return issue.NewErrorContext().
			WithOperation("start mod build").
			WithSuggestion("Set project_file in the modkit config file to your .uproject").
			BuildError()
	}

	outDir, err := OutputFolder(cfg)
	if err != nil {
		return err
	}

	p.runSaveAll(ctx)

	script, err := uat.ScriptPath(cfg.EngineDir)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("locate automation tool").
			WithResource(cfg.EngineDir).
			WithSuggestion("Set engine_dir to the Unreal Engine installation root").
			Wrap(err).
			BuildError()
	}

	sessionDir, err := newSessionDir(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(sessionDir); err != nil {
			log.Warn("could not delete staging session directory", "dir", sessionDir, "err", err)
		}
	}()
	log.Info("created staging session", "dir", sessionDir)

	guard, err := uat.DisableLiveCoding(p.editorSettingsPath())
	if err != nil {
		return fmt.Errorf("failed to disable live coding: %w", err)
	}
	defer guard.Release()

	opts := uat.BuildOptions{
		ProjectFile: cfg.ProjectFile,
		Platform:    cfg.Platform,
		StagingDir:  sessionDir,
		UseIoStore:  cfg.UseIoStore,
		CookDir:     p.modContentDir(modName),
	}
	if err := uat.Run(ctx, script, uat.Args(opts)); err != nil {
		return fmt.Errorf("automation tool build failed: %w", err)
	}
	guard.Release()

	paksDir, err := stagedPaksDir(sessionDir, cfg)
	if err != nil {
		return err
	}

	set, err := staging.Resolve(paksDir, cfg.UseIoStore)
	if err != nil {
		return fmt.Errorf("build ran but its output could not be resolved: %w", err)
	}

	report := staging.Stage(set, outDir, modName)
	if !report.OverallSuccess {
		return fmt.Errorf("one or more output files failed to copy to %s", outDir)
	}

	log.Info("mod staged", "mod", modName, "dir", outDir)
	return nil
}

// runSaveAll executes the configured pre-build save command, if any.
// Failures are logged and never abort the build.
func (p *Pipeline) runSaveAll(ctx context.Context) {
	cmdStr := p.Config.SaveAllCommand
	if cmdStr == "" {
		return
	}
	log.Info("running pre-build save command", "cmd", cmdStr)
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Warn("pre-build save command failed", "err", err, "output", string(out))
	}
}

// newSessionDir creates the unique single-use staging directory for one
// build invocation.
func newSessionDir(cfg *config.Config) (string, error) {
	base := filepath.Join(cfg.ProjectDir(), "Intermediate", "ModkitStaging")
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging root %s: %w", base, err)
	}
	dir, err := os.MkdirTemp(base, "build-")
	if err != nil {
		return "", fmt.Errorf("failed to create staging session directory: %w", err)
	}
	return dir, nil
}

// stagedPaksDir locates the Content/Paks directory inside a finished
// staging session. Recent engine versions nest it under a platform
// folder; the flat legacy layout is accepted with a warning.
func stagedPaksDir(sessionDir string, cfg *config.Config) (string, error) {
	project := cfg.ProjectName()
	primary := filepath.Join(sessionDir, stagedPlatformDir(cfg.Platform), project, "Content", "Paks")
	if dirExists(primary) {
		return primary, nil
	}

	alt := filepath.Join(sessionDir, project, "Content", "Paks")
	if dirExists(alt) {
		log.Warn("staged Paks directory found at legacy location", "dir", alt)
		return alt, nil
	}

	return "", fmt.Errorf("build seemed successful, but no staged Paks directory was found at %s or %s", primary, alt)
}

// stagedPlatformDir maps the build platform to the folder name the
// staging step uses.
func stagedPlatformDir(platform string) string {
	switch platform {
	case "Win64", "Win32":
		return "Windows"
	default:
		return platform
	}
}

// editorSettingsPath is where the editor persists per-project settings,
// including the live coding toggle.
func (p *Pipeline) editorSettingsPath() string {
	return filepath.Join(p.Config.ProjectDir(),
		"Saved", "Config", "WindowsEditor", "EditorPerProjectUserSettings.ini")
}

// modContentDir returns the mod's content directory for cook scoping,
// or empty when it does not exist.
func (p *Pipeline) modContentDir(modName string) string {
	dir := filepath.Join(p.Config.ProjectDir(), "Content", "Mods", modName)
	if !dirExists(dir) {
		log.Warn("mod content directory not found, cooking without -CookDir", "dir", dir)
		return ""
	}
	return dir
}

func (p *Pipeline) packagingMode() string {
	if p.Config.UseIoStore {
		return "IoStore + Pak"
	}
	return "Pak File"
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
