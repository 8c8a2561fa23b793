// SPDX-License-Identifier: MPL-2.0

package staging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// StageReport accounts for each copy attempt of a staging run.
// A failed copy never aborts the remaining attempts in the same run,
// but any failure flips OverallSuccess.
type StageReport struct {
	// PrimaryCopied is true once the chunk container landed at its
	// canonical destination.
	PrimaryCopied bool
	// TocCopied and DataCopied report the IoStore companions. DataCopied
	// can only be true when TocCopied is: a .ucas is never staged
	// without its .utoc.
	TocCopied  bool
	DataCopied bool
	// OverallSuccess is true only if every file the set requires was
	// copied.
	OverallSuccess bool
}

// Stage copies the resolved set into destDir, renaming every file to
// the canonical mod-named form ({modName}.pak/.utoc/.ucas). Existing
// destination files are overwritten. Sources are left in place; the
// caller owns staging-directory cleanup.
func Stage(set *ResolvedSet, destDir, modName string) StageReport {
	var report StageReport

	report.PrimaryCopied = stageOne(set.Dir, set.Primary.Filename, destDir, modName+PrimaryExt)
	if !set.UsesIoStore {
		report.OverallSuccess = report.PrimaryCopied
		return report
	}

	report.TocCopied = stageOne(set.Dir, set.Toc, destDir, modName+TocExt)
	if report.TocCopied {
		report.DataCopied = stageOne(set.Dir, set.Data, destDir, modName+DataExt)
	} else {
		log.Warn("skipping .ucas copy because the .utoc copy did not succeed", "file", set.Data)
	}

	report.OverallSuccess = report.PrimaryCopied && report.TocCopied && report.DataCopied
	return report
}

// stageOne copies a single staged file to its canonical destination
// name and reports success. Failures are logged, not returned: the
// caller aggregates them through the report.
func stageOne(srcDir, srcName, destDir, destName string) bool {
	src := filepath.Join(srcDir, srcName)
	dst := filepath.Join(destDir, destName)

	log.Info("staging build output", "src", srcName, "dst", dst)
	if err := copyFile(dst, src); err != nil {
		log.Error("failed to copy build output", "src", src, "dst", dst, "err", err)
		return false
	}
	return true
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
