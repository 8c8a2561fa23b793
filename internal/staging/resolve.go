// SPDX-License-Identifier: MPL-2.0

package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// PrimaryExt is the extension of the chunk container holding cooked content.
	PrimaryExt = ".pak"
	// TocExt is the extension of the IoStore table-of-contents companion.
	TocExt = ".utoc"
	// DataExt is the extension of the IoStore data companion.
	DataExt = ".ucas"
)

// ChunkNameRegex is the grammar for cooked chunk filenames:
// a literal "pakchunk" prefix, a decimal chunk index, and an optional
// platform tag after a hyphen (e.g. "pakchunk17-Win64.pak").
// The bare project container some configurations also emit (for example
// "MyGame-Windows.pak") deliberately does not match.
var ChunkNameRegex = regexp.MustCompile(`^pakchunk(\d+)(?:-([A-Za-z0-9_+]+))?\.pak$`)

// Candidate is one chunk file discovered in the staging directory.
type Candidate struct {
	// Filename is the bare file name, without any directory component.
	Filename string
	// ChunkIndex is the numeric index parsed from the filename.
	ChunkIndex int
	// PlatformTag is the qualifier after the index, if any (e.g. "Win64").
	PlatformTag string
}

// BaseName returns the filename with the container extension stripped.
// Companion files share this base.
func (c Candidate) BaseName() string {
	return strings.TrimSuffix(c.Filename, PrimaryExt)
}

// ParseCandidate parses a bare filename against the chunk grammar.
// The second return value is false for filenames that are not chunk
// containers.
func ParseCandidate(filename string) (Candidate, bool) {
	m := ChunkNameRegex.FindStringSubmatch(filename)
	if m == nil {
		return Candidate{}, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		// The digits group can only overflow, which no real cook produces.
		return Candidate{}, false
	}
	return Candidate{Filename: filename, ChunkIndex: idx, PlatformTag: m[2]}, true
}

// Resolution failures, distinguished so callers can tell the operator
// whether the cook produced nothing usable or produced an inconsistent
// IoStore set.
var (
	// ErrNoChunks means no file in the staging directory matched the
	// chunk grammar.
	ErrNoChunks = errors.New("no pakchunk files found in staging directory")
	// ErrMissingToc means the winning chunk has no .utoc companion.
	ErrMissingToc = errors.New("missing .utoc companion for winning pakchunk")
	// ErrMissingData means the winning chunk has a .utoc but no .ucas.
	ErrMissingData = errors.New("missing .ucas companion for winning pakchunk")
)

// ResolvedSet is the authoritative file set selected from a staging
// directory. Paths are bare filenames relative to Dir.
type ResolvedSet struct {
	// Dir is the staging directory the set was resolved from.
	Dir string
	// Primary is the winning chunk container.
	Primary Candidate
	// Toc and Data are the IoStore companion filenames; empty unless
	// UsesIoStore is set.
	Toc  string
	Data string
	// UsesIoStore records whether companions are part of the set.
	UsesIoStore bool
}

// Resolve scans dir for cooked chunk files and selects the authoritative
// set. The chunk with the numerically highest index wins; among several
// files with the same index the first in lexical filename order wins,
// so the result is stable across runs. With useIoStore set, both
// companions must exist for the winning chunk: the .utoc is checked
// first, and a missing .utoc fails without ever considering the .ucas.
func Resolve(dir string, useIoStore bool) (*ResolvedSet, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+PrimaryExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list staging directory %s: %w", dir, err)
	}
	sort.Strings(matches)

	var candidates []Candidate
	for _, match := range matches {
		name := filepath.Base(match)
		cand, ok := ParseCandidate(name)
		if !ok {
			log.Debug("ignoring non-chunk pak file", "file", name)
			continue
		}
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, dir)
	}

	winner := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.ChunkIndex > winner.ChunkIndex {
			winner = cand
		}
	}
	// Ties below the maximum index are superseded and not worth noise.
	for _, cand := range candidates {
		if cand.ChunkIndex == winner.ChunkIndex && cand.Filename != winner.Filename {
			log.Warn("multiple pakchunks share the highest index, keeping first",
				"kept", winner.Filename, "ignored", cand.Filename)
		}
	}

	log.Debug("selected winning pakchunk", "file", winner.Filename, "index", winner.ChunkIndex)

	set := &ResolvedSet{Dir: dir, Primary: winner, UsesIoStore: useIoStore}
	if !useIoStore {
		return set, nil
	}

	toc := winner.BaseName() + TocExt
	if !fileExists(filepath.Join(dir, toc)) {
		return nil, fmt.Errorf("%w: expected %s", ErrMissingToc, toc)
	}
	data := winner.BaseName() + DataExt
	if !fileExists(filepath.Join(dir, data)) {
		return nil, fmt.Errorf("%w: expected %s", ErrMissingData, data)
	}
	set.Toc = toc
	set.Data = data
	return set, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
