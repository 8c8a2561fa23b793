package modbuild

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"modkit/internal/config"
)

func TestZipModWithoutBuild(t *testing.T) {
	outDir := t.TempDir()
	for _, name := range []string{"MyMod.pak", "MyMod.utoc", "MyMod.ucas"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}

	zipDir := t.TempDir()
	cfg := &config.Config{
		ProjectFile:  "/proj/MyGame.uproject",
		CustomPakDir: outDir,
		ModZipDir:    zipDir,
	}
	rec := &recorder{}

	if err := New(cfg, rec).ZipMod(context.Background(), "MyMod"); err != nil {
		t.Fatalf("ZipMod() error = %v", err)
	}

	zipPath := filepath.Join(zipDir, "MyMod.zip")
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("zip not created: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 3 {
		t.Errorf("zip has %d entries, want 3", len(zr.File))
	}

	if len(rec.successes) != 1 || len(rec.failures) != 0 {
		t.Errorf("notifications = %d successes, %d failures; want exactly one success",
			len(rec.successes), len(rec.failures))
	}
}

func TestZipModNothingBuilt(t *testing.T) {
	cfg := &config.Config{
		ProjectFile:  "/proj/MyGame.uproject",
		CustomPakDir: t.TempDir(),
		ModZipDir:    t.TempDir(),
	}
	rec := &recorder{}

	if err := New(cfg, rec).ZipMod(context.Background(), "MyMod"); err == nil {
		t.Fatal("ZipMod() should fail when the mod was never built")
	}
	if len(rec.failures) != 1 {
		t.Errorf("failures = %d, want 1", len(rec.failures))
	}
	if _, err := os.Stat(filepath.Join(cfg.ModZipDir, "MyMod.zip")); err == nil {
		t.Error("zip file should not exist")
	}
}

func TestZipModBuildsFirstWhenConfigured(t *testing.T) {
	cfg, outDir := testConfig(t, fakeEngine(t, cookScript))
	cfg.AlwaysBuildBeforeZipping = true
	cfg.ModZipDir = t.TempDir()
	rec := &recorder{}

	if err := New(cfg, rec).ZipMod(context.Background(), "MyMod"); err != nil {
		t.Fatalf("ZipMod() error = %v", err)
	}

	// Build staged the canonical files, then zip bundled them.
	if _, err := os.Stat(filepath.Join(outDir, "MyMod.pak")); err != nil {
		t.Errorf("build output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ModZipDir, "MyMod.zip")); err != nil {
		t.Errorf("zip output missing: %v", err)
	}

	// One notification for the build, one for the zip.
	if len(rec.successes) != 2 {
		t.Errorf("successes = %d, want 2 (build + zip)", len(rec.successes))
	}
}
