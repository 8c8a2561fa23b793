// SPDX-License-Identifier: MPL-2.0

// Package archive bundles a mod's canonical output files into a zip for
// distribution. It trusts only the filesystem state of the output
// directory: the canonical names established by staging are the sole
// contract between building and zipping.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"modkit/internal/staging"
)

// ErrNothingToArchive means the canonical .pak is absent from the
// output directory, i.e. the mod has not been built (or the build
// failed). No zip file is created in this case.
var ErrNothingToArchive = errors.New("no built mod files found to archive")

// Zip bundles the canonical files for modName found in outputDir into a
// new zip at zipPath. The .pak is required. The IoStore companions are
// included only when both exist on disk; a lone .utoc or .ucas is
// ignored. Files that cannot be read are skipped so every problem
// surfaces in one run, but any read failure makes the whole operation
// fail and the written zip must be treated as incomplete.
func Zip(outputDir, modName, zipPath string) error {
	pakPath := filepath.Join(outputDir, modName+staging.PrimaryExt)
	if !fileExists(pakPath) {
		return fmt.Errorf("%w: expected %s", ErrNothingToArchive, pakPath)
	}
	sources := []string{pakPath}

	tocPath := filepath.Join(outputDir, modName+staging.TocExt)
	dataPath := filepath.Join(outputDir, modName+staging.DataExt)
	if fileExists(tocPath) && fileExists(dataPath) {
		sources = append(sources, tocPath, dataPath)
		log.Debug("including IoStore files in archive", "toc", tocPath, "data", dataPath)
	}

	if err := os.MkdirAll(filepath.Dir(zipPath), 0755); err != nil {
		return fmt.Errorf("failed to create archive output directory: %w", err)
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create zip file %s: %w", zipPath, err)
	}

	zw := zip.NewWriter(f)
	allAdded := true
	for _, src := range sources {
		if err := addFile(zw, src); err != nil {
			log.Error("failed to add file to archive", "file", src, "err", err)
			allAdded = false
		}
	}

	// Finalize exactly once, even after a partial failure above.
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize zip %s: %w", zipPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close zip %s: %w", zipPath, err)
	}

	if !allAdded {
		return fmt.Errorf("one or more files could not be added to %s; delete the archive and retry", zipPath)
	}

	log.Info("created mod archive", "zip", zipPath, "files", len(sources))
	return nil
}

// addFile reads src fully and appends it to the archive under its bare
// filename with the current timestamp.
func addFile(zw *zip.Writer, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	hdr := &zip.FileHeader{
		Name:     filepath.Base(src),
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
