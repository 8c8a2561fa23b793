// SPDX-License-Identifier: MPL-2.0

package modbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"modkit/internal/config"
	"modkit/internal/issue"
)

// OutputFolder resolves and creates the final destination directory for
// staged mod files. A configured custom pak dir wins outright;
// otherwise the folder is computed from the game dir and the logic-mod
// folder template, with {GameName} replaced by the project name.
func OutputFolder(cfg *config.Config) (string, error) {
	if cfg.CustomPakDir != "" {
		if err := os.MkdirAll(cfg.CustomPakDir, 0755); err != nil {
			return "", issue.NewErrorContext().
				WithOperation("create custom pak directory").
				WithResource(cfg.CustomPakDir).
				WithSuggestion("Check custom_pak_dir in the modkit config file").
				Wrap(err).
				BuildError()
		}
		log.Debug("using custom pak directory", "dir", cfg.CustomPakDir)
		return cfg.CustomPakDir, nil
	}

	if cfg.GameDir == "" {
		return "", issue.NewErrorContext().
			WithOperation("resolve output folder").
			WithSuggestion("Set game_dir in the modkit config file to the installed game's root").
			WithSuggestion("Or set custom_pak_dir to an explicit output directory").
			BuildError()
	}
	if info, err := os.Stat(cfg.GameDir); err != nil || !info.IsDir() {
		return "", issue.NewErrorContext().
			WithOperation("resolve output folder").
			WithResource(cfg.GameDir).
			WithSuggestion("Verify game_dir points at an existing directory").
			BuildError()
	}

	rel := cfg.LogicModFolder
	if rel == "" {
		return "", issue.NewErrorContext().
			WithOperation("resolve output folder").
			WithSuggestion("Set logic_mod_folder in the modkit config file").
			BuildError()
	}
	rel = strings.ReplaceAll(rel, "{GameName}", cfg.ProjectName())

	out := filepath.Join(cfg.GameDir, rel)
	if err := os.MkdirAll(out, 0755); err != nil {
		return "", fmt.Errorf("failed to create output folder %s: %w", out, err)
	}
	log.Debug("resolved output folder", "dir", out)
	return out, nil
}
