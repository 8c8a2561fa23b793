// SPDX-License-Identifier: MPL-2.0

package modbuild

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"modkit/internal/archive"
	"modkit/internal/issue"
	"modkit/internal/notify"
)

// ZipMod bundles a mod's canonical output files into a distributable
// zip. With always_build_before_zipping set the mod is rebuilt first
// (that build notifies on its own). The notifier fires exactly once for
// the zip outcome.
func (p *Pipeline) ZipMod(ctx context.Context, modName string) error {
	if p.Config.AlwaysBuildBeforeZipping {
		log.Info("building mod before zipping", "mod", modName)
		if err := p.BuildMod(ctx, modName); err != nil {
			return fmt.Errorf("zip aborted because the build failed: %w", err)
		}
	}

	zipPath, err := p.zipModInternal(modName)
	if err != nil {
		p.Notifier.Failure(fmt.Sprintf("Zipping mod '%s' failed: %v", modName, err))
		return err
	}
	p.Notifier.Success(fmt.Sprintf("Mod '%s' zipped successfully: %s", modName, zipPath))

	if p.Config.OpenZipFolderAfterZipping {
		if err := notify.OpenFolder(filepath.Dir(zipPath)); err != nil {
			log.Warn("could not open zip folder", "err", err)
		}
	}
	return nil
}

func (p *Pipeline) zipModInternal(modName string) (string, error) {
	outDir, err := OutputFolder(p.Config)
	if err != nil {
		return "", err
	}

	zipDir := p.Config.ModZipDir
	if zipDir == "" {
		zipDir = filepath.Join(p.Config.ProjectDir(), "Saved", "Zips")
		log.Warn("mod_zip_dir not set, using default", "dir", zipDir)
	}

	zipPath := filepath.Join(zipDir, modName+".zip")
	if err := archive.Zip(outDir, modName, zipPath); err != nil {
		if errors.Is(err, archive.ErrNothingToArchive) {
			return "", issue.NewErrorContext().
				WithOperation("zip mod").
				WithResource(outDir).
				WithSuggestion(fmt.Sprintf("Build the mod first: modkit build %s", modName)).
				Wrap(err).
				BuildError()
		}
		return "", err
	}
	return zipPath, nil
}
