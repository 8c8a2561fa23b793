// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"modkit/internal/config"
)

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage modkit configuration",
	Long: `Manage the modkit configuration file.

Examples:
  modkit config init
  modkit config show
  modkit config path`,
}

// configShowCmd prints the resolved configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

// configInitCmd writes a default config file.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	RunE:  runConfigInit,
}

// configPathCmd prints the effective config file path.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	fmt.Println(TitleStyle.Render("Configuration"))
	fmt.Print(string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.WriteDefault()
	if err != nil {
		return err
	}

	fmt.Printf("%s Config file created\n", successIcon)
	fmt.Printf("%s Path: %s\n", infoIcon, PathStyle.Render(path))
	fmt.Println()
	fmt.Println(WarningStyle.Render("!") + " Set project_file, engine_dir and game_dir before building")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.FilePath()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
