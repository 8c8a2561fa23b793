// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"modkit/internal/issue"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "modkit"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

// Config holds all modkit settings.
type Config struct {
	// ProjectFile is the path to the .uproject file of the modding project.
	ProjectFile string `mapstructure:"project_file" toml:"project_file"`
	// EngineDir is the Unreal Engine installation root (contains Build/BatchFiles).
	EngineDir string `mapstructure:"engine_dir" toml:"engine_dir"`
	// Platform is the target platform passed to the automation tool.
	Platform string `mapstructure:"platform" toml:"platform"`
	// UseIoStore enables IoStore packaging (.utoc/.ucas companions).
	UseIoStore bool `mapstructure:"use_io_store" toml:"use_io_store"`

	// GameDir is the installed game's root directory.
	GameDir string `mapstructure:"game_dir" toml:"game_dir"`
	// CustomPakDir, when set, overrides the computed output folder entirely.
	CustomPakDir string `mapstructure:"custom_pak_dir" toml:"custom_pak_dir"`
	// LogicModFolder is the output folder relative to GameDir. The token
	// {GameName} is replaced with the project name.
	LogicModFolder string `mapstructure:"logic_mod_folder" toml:"logic_mod_folder"`

	// ModZipDir is where zip archives are written. Empty means
	// Saved/Zips under the project directory.
	ModZipDir string `mapstructure:"mod_zip_dir" toml:"mod_zip_dir"`
	// AlwaysBuildBeforeZipping builds the mod before every zip operation.
	AlwaysBuildBeforeZipping bool `mapstructure:"always_build_before_zipping" toml:"always_build_before_zipping"`
	// OpenZipFolderAfterZipping opens the zip output folder on success.
	OpenZipFolderAfterZipping bool `mapstructure:"open_zip_folder_after_zipping" toml:"open_zip_folder_after_zipping"`

	// SaveAllCommand is an optional command run before building, e.g. a
	// script that saves dirty editor packages. Failures are non-fatal.
	SaveAllCommand string `mapstructure:"save_all_command" toml:"save_all_command"`
}

// configFilePathOverride is set via the --config flag.
var configFilePathOverride string

// configDirOverride lets tests redirect the config directory.
var configDirOverride string

// SetConfigFilePathOverride sets a custom config file path, used by the
// --config flag. Takes precedence over the default location.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// SetConfigDirOverride redirects the config directory, for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Platform:                 "Win64",
		UseIoStore:               true,
		LogicModFolder:           filepath.Join("{GameName}", "Content", "Paks", "LogicMods"),
		AlwaysBuildBeforeZipping: true,
	}
}

// ConfigDir returns the modkit configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the effective config file path, honoring the
// --config override.
func FilePath() (string, error) {
	if configFilePathOverride != "" {
		return configFilePathOverride, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the configuration from defaults, the config file (if it
// exists), and MODKIT_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Every key gets a default so environment overrides bind even for
	// settings absent from the config file.
	defaults := DefaultConfig()
	v.SetDefault("project_file", defaults.ProjectFile)
	v.SetDefault("engine_dir", defaults.EngineDir)
	v.SetDefault("platform", defaults.Platform)
	v.SetDefault("use_io_store", defaults.UseIoStore)
	v.SetDefault("game_dir", defaults.GameDir)
	v.SetDefault("custom_pak_dir", defaults.CustomPakDir)
	v.SetDefault("logic_mod_folder", defaults.LogicModFolder)
	v.SetDefault("mod_zip_dir", defaults.ModZipDir)
	v.SetDefault("always_build_before_zipping", defaults.AlwaysBuildBeforeZipping)
	v.SetDefault("open_zip_folder_after_zipping", defaults.OpenZipFolderAfterZipping)
	v.SetDefault("save_all_command", defaults.SaveAllCommand)

	v.SetEnvPrefix("MODKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileExt)

	if err := v.ReadInConfig(); err != nil {
		// The default location is allowed to be absent; an explicitly
		// requested file is not.
		if configFilePathOverride != "" || !os.IsNotExist(underlying(err)) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Run 'modkit config init' to create a config file").
				WithSuggestion("Verify the file is valid TOML").
				Wrap(err).
				BuildError()
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse configuration").
			WithResource(path).
			WithSuggestion("Check the field types in the config file").
			Wrap(err).
			BuildError()
	}

	return cfg, nil
}

// underlying digs to the innermost error for os.IsNotExist checks.
func underlying(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// ProjectName derives the project name from the configured .uproject
// file, mirroring the engine's notion of the game name.
func (c *Config) ProjectName() string {
	base := filepath.Base(c.ProjectFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ProjectDir returns the directory containing the .uproject file.
func (c *Config) ProjectDir() string {
	return filepath.Dir(c.ProjectFile)
}

// WriteDefault writes a default config file to the effective config
// path. Refuses to overwrite an existing file.
func WriteDefault() (string, error) {
	path, err := FilePath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to render default config: %w", err)
	}

	header := "# modkit configuration\n# project_file, engine_dir and game_dir must be set before building.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
