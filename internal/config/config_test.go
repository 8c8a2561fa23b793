package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetOverrides restores the package-level path overrides after a test.
func resetOverrides(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetConfigFilePathOverride("")
		SetConfigDirOverride("")
	})
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	resetOverrides(t)
	SetConfigDirOverride(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Platform != "Win64" {
		t.Errorf("Platform = %s, want Win64", cfg.Platform)
	}
	if !cfg.UseIoStore {
		t.Error("UseIoStore should default to true")
	}
	if !cfg.AlwaysBuildBeforeZipping {
		t.Error("AlwaysBuildBeforeZipping should default to true")
	}
	if !strings.Contains(cfg.LogicModFolder, "{GameName}") {
		t.Errorf("LogicModFolder = %s, want the {GameName} token", cfg.LogicModFolder)
	}
}

func TestLoadFromFile(t *testing.T) {
	resetOverrides(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
project_file = "/proj/MyGame.uproject"
engine_dir = "/engines/5.3"
platform = "Linux"
use_io_store = false
game_dir = "/games/mygame"
mod_zip_dir = "/zips"
always_build_before_zipping = false
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	SetConfigFilePathOverride(path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ProjectFile != "/proj/MyGame.uproject" {
		t.Errorf("ProjectFile = %s", cfg.ProjectFile)
	}
	if cfg.Platform != "Linux" {
		t.Errorf("Platform = %s, want Linux", cfg.Platform)
	}
	if cfg.UseIoStore {
		t.Error("UseIoStore should be false")
	}
	if cfg.AlwaysBuildBeforeZipping {
		t.Error("AlwaysBuildBeforeZipping should be false")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	resetOverrides(t)
	SetConfigFilePathOverride(filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for an explicitly requested missing file")
	}
}

func TestLoadInvalidTOMLFails(t *testing.T) {
	resetOverrides(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("platform = [not toml"), 0644); err != nil {
		t.Fatal(err)
	}
	SetConfigFilePathOverride(path)

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for malformed TOML")
	}
}

func TestWriteDefault(t *testing.T) {
	resetOverrides(t)
	SetConfigDirOverride(t.TempDir())

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "platform = 'Win64'") &&
		!strings.Contains(string(data), `platform = "Win64"`) {
		t.Errorf("default config missing platform:\n%s", data)
	}

	// A second init must not clobber the existing file.
	if _, err := WriteDefault(); err == nil {
		t.Error("WriteDefault() should refuse to overwrite an existing file")
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		name        string
		projectFile string
		want        string
	}{
		{name: "simple", projectFile: "/proj/MyGame.uproject", want: "MyGame"},
		{name: "nested dir", projectFile: "/a/b/c/Another.uproject", want: "Another"},
		{name: "no extension", projectFile: "/proj/Bare", want: "Bare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ProjectFile: tt.projectFile}
			if got := cfg.ProjectName(); got != tt.want {
				t.Errorf("ProjectName() = %s, want %s", got, tt.want)
			}
		})
	}
}
