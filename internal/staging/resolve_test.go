package staging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name+" contents"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Candidate
		ok       bool
	}{
		{
			name:     "indexed chunk with platform tag",
			filename: "pakchunk17-Win64.pak",
			want:     Candidate{Filename: "pakchunk17-Win64.pak", ChunkIndex: 17, PlatformTag: "Win64"},
			ok:       true,
		},
		{
			name:     "indexed chunk without platform tag",
			filename: "pakchunk0.pak",
			want:     Candidate{Filename: "pakchunk0.pak", ChunkIndex: 0},
			ok:       true,
		},
		{
			name:     "multi-digit index",
			filename: "pakchunk123-LinuxServer.pak",
			want:     Candidate{Filename: "pakchunk123-LinuxServer.pak", ChunkIndex: 123, PlatformTag: "LinuxServer"},
			ok:       true,
		},
		{
			name:     "unnumbered project container",
			filename: "MyGame-Windows.pak",
			ok:       false,
		},
		{
			name:     "missing index",
			filename: "pakchunk-Win64.pak",
			ok:       false,
		},
		{
			name:     "wrong extension",
			filename: "pakchunk3-Win64.utoc",
			ok:       false,
		},
		{
			name:     "prefix only",
			filename: "pakchunk",
			ok:       false,
		},
		{
			name:     "chunk name embedded in longer name",
			filename: "oldpakchunk3-Win64.pak",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCandidate(tt.filename)
			if ok != tt.ok {
				t.Fatalf("ParseCandidate(%q) ok = %v, want %v", tt.filename, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("ParseCandidate(%q) = %+v, want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestResolveSelectsHighestChunk(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "pakchunk3-Win64.pak", "pakchunk17-Win64.pak", "pakchunk9-Win64.pak")

	set, err := Resolve(dir, false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Primary.Filename != "pakchunk17-Win64.pak" {
		t.Errorf("winner = %s, want pakchunk17-Win64.pak", set.Primary.Filename)
	}
	if set.Primary.ChunkIndex != 17 {
		t.Errorf("winner index = %d, want 17", set.Primary.ChunkIndex)
	}
}

func TestResolveTieBreakIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "pakchunk10-Win64.pak", "pakchunk10-Linux.pak")

	// The listing is sorted before scanning, so the lexically first
	// candidate at the highest index wins on every run.
	for i := 0; i < 5; i++ {
		set, err := Resolve(dir, false)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if set.Primary.Filename != "pakchunk10-Linux.pak" {
			t.Fatalf("winner = %s, want pakchunk10-Linux.pak", set.Primary.Filename)
		}
	}
}

func TestResolveWarnsOnlyOnTieAtHighestIndex(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	// A tie at a lower index is superseded by a later chunk and must
	// stay silent.
	dir := t.TempDir()
	writeFiles(t, dir, "pakchunk5.pak", "pakchunk5-Linux.pak", "pakchunk9.pak")

	set, err := Resolve(dir, false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Primary.Filename != "pakchunk9.pak" {
		t.Errorf("winner = %s, want pakchunk9.pak", set.Primary.Filename)
	}
	if out := buf.String(); strings.Contains(out, "highest index") {
		t.Errorf("warned about a superseded tie:\n%s", out)
	}

	// A tie at the winning index is reported with the ignored file.
	buf.Reset()
	dir = t.TempDir()
	writeFiles(t, dir, "pakchunk9-Linux.pak", "pakchunk9-Win64.pak")

	set, err = Resolve(dir, false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Primary.Filename != "pakchunk9-Linux.pak" {
		t.Errorf("winner = %s, want pakchunk9-Linux.pak", set.Primary.Filename)
	}
	out := buf.String()
	if !strings.Contains(out, "highest index") || !strings.Contains(out, "pakchunk9-Win64.pak") {
		t.Errorf("missing tie warning for the ignored file:\n%s", out)
	}
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T) string // returns staging dir
		useIoStore bool
		wantErr    error
	}{
		{
			name: "empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: ErrNoChunks,
		},
		{
			name: "only the unnumbered default container",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFiles(t, dir, "MyGame-Windows.pak")
				return dir
			},
			wantErr: ErrNoChunks,
		},
		{
			name: "io store with no companions",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFiles(t, dir, "pakchunk5-Win64.pak")
				return dir
			},
			useIoStore: true,
			wantErr:    ErrMissingToc,
		},
		{
			name: "io store with only ucas reports the missing utoc",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFiles(t, dir, "pakchunk5-Win64.pak", "pakchunk5-Win64.ucas")
				return dir
			},
			useIoStore: true,
			wantErr:    ErrMissingToc,
		},
		{
			name: "io store with utoc but no ucas",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFiles(t, dir, "pakchunk5-Win64.pak", "pakchunk5-Win64.utoc")
				return dir
			},
			useIoStore: true,
			wantErr:    ErrMissingData,
		},
		{
			name: "companions belong to the winner, not a lower chunk",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFiles(t, dir,
					"pakchunk3-Win64.pak", "pakchunk3-Win64.utoc", "pakchunk3-Win64.ucas",
					"pakchunk9-Win64.pak")
				return dir
			},
			useIoStore: true,
			wantErr:    ErrMissingToc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			_, err := Resolve(dir, tt.useIoStore)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveWithIoStoreCompanions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"pakchunk3-Win64.pak",
		"pakchunk12-Win64.pak", "pakchunk12-Win64.utoc", "pakchunk12-Win64.ucas")

	set, err := Resolve(dir, true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Primary.Filename != "pakchunk12-Win64.pak" {
		t.Errorf("winner = %s, want pakchunk12-Win64.pak", set.Primary.Filename)
	}
	if set.Toc != "pakchunk12-Win64.utoc" {
		t.Errorf("toc = %s, want pakchunk12-Win64.utoc", set.Toc)
	}
	if set.Data != "pakchunk12-Win64.ucas" {
		t.Errorf("data = %s, want pakchunk12-Win64.ucas", set.Data)
	}
}

func TestResolveWithoutIoStoreIgnoresCompanions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "pakchunk5-Win64.pak")

	set, err := Resolve(dir, false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Toc != "" || set.Data != "" {
		t.Errorf("companions resolved without io store: toc=%q data=%q", set.Toc, set.Data)
	}
}
