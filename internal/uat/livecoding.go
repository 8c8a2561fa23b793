// SPDX-License-Identifier: MPL-2.0

package uat

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	liveCodingSection = "[LiveCoding]"
	liveCodingKey     = "bEnabled"
)

var liveCodingDisabledLine = liveCodingKey + "=False"

// Edits the guard undoes on release.
const (
	editNone = iota
	// editReplaced: the key line existed and was rewritten; the prior
	// line is restored.
	editReplaced
	// editInserted: the key line was added; it is removed again, along
	// with the section header when the guard added that too.
	editInserted
)

// LiveCodingGuard scopes a temporary disable of the editor's live
// coding setting around a build. Release undoes the edit and is safe to
// call more than once, so callers can defer it and also release eagerly
// on the success path.
type LiveCodingGuard struct {
	path         string
	prev         string
	edit         int
	addedSection bool
	once         sync.Once
}

// DisableLiveCoding forces bEnabled=False under [LiveCoding] in the
// given editor settings ini and returns a guard that undoes the edit.
// The editor treats an absent key as enabled, so a missing key or
// section is written in rather than skipped. Only a missing ini file
// yields a no-op guard: a project the editor has never touched has no
// live coding session to interfere with.
func DisableLiveCoding(iniPath string) (*LiveCodingGuard, error) {
	g := &LiveCodingGuard{path: iniPath}

	data, err := os.ReadFile(iniPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("editor settings ini not found, leaving live coding alone", "path", iniPath)
			return g, nil
		}
		return nil, fmt.Errorf("failed to read editor settings: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	if idx := findLiveCodingKey(lines); idx >= 0 {
		g.prev = lines[idx]
		lines[idx] = liveCodingDisabledLine
		g.edit = editReplaced
	} else if secIdx := findSection(lines, liveCodingSection); secIdx >= 0 {
		lines = slices.Insert(lines, secIdx+1, liveCodingDisabledLine)
		g.edit = editInserted
	} else {
		lines = appendLiveCodingSection(lines)
		g.edit = editInserted
		g.addedSection = true
	}

	if err := os.WriteFile(iniPath, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return nil, fmt.Errorf("failed to disable live coding: %w", err)
	}
	log.Debug("disabled live coding for the build", "path", iniPath)
	return g, nil
}

// Release undoes the live coding edit. Failures are logged, not
// returned: a stuck setting should not fail a build that already
// succeeded.
func (g *LiveCodingGuard) Release() {
	g.once.Do(func() {
		if g.edit == editNone {
			return
		}
		data, err := os.ReadFile(g.path)
		if err != nil {
			log.Warn("could not restore live coding setting", "path", g.path, "err", err)
			return
		}
		lines := strings.Split(string(data), "\n")
		idx := findLiveCodingKey(lines)
		if idx < 0 {
			log.Warn("live coding setting disappeared, not restoring", "path", g.path)
			return
		}

		switch g.edit {
		case editReplaced:
			lines[idx] = g.prev
		case editInserted:
			lines = slices.Delete(lines, idx, idx+1)
			if g.addedSection {
				secIdx := findSection(lines, liveCodingSection)
				if secIdx >= 0 && sectionIsEmpty(lines, secIdx) {
					lines = slices.Delete(lines, secIdx, secIdx+1)
				}
			}
		}

		if err := os.WriteFile(g.path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
			log.Warn("could not restore live coding setting", "path", g.path, "err", err)
			return
		}
		log.Debug("restored live coding setting", "path", g.path)
	})
}

// appendLiveCodingSection appends the section header and disabled key,
// keeping an existing trailing newline at the end of the file.
func appendLiveCodingSection(lines []string) []string {
	if n := len(lines); n > 0 && lines[n-1] == "" {
		return append(lines[:n-1], liveCodingSection, liveCodingDisabledLine, "")
	}
	return append(lines, liveCodingSection, liveCodingDisabledLine)
}

// findLiveCodingKey returns the index of the bEnabled line inside the
// [LiveCoding] section, or -1.
func findLiveCodingKey(lines []string) int {
	inSection := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inSection = trimmed == liveCodingSection
			continue
		}
		if inSection && strings.HasPrefix(trimmed, liveCodingKey+"=") {
			return i
		}
	}
	return -1
}

// findSection returns the index of the section header line, or -1.
func findSection(lines []string, section string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == section {
			return i
		}
	}
	return -1
}

// sectionIsEmpty reports whether only blank lines follow the header
// before the next section (or the end of the file).
func sectionIsEmpty(lines []string, secIdx int) bool {
	for _, line := range lines[secIdx+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "[")
	}
	return true
}
