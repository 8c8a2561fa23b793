// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modkit/internal/config"
	"modkit/internal/modbuild"
	"modkit/internal/notify"
)

// buildCmd cooks, stages and installs a mod.
var buildCmd = &cobra.Command{
	Use:   "build <mod-name>",
	Short: "Build a mod and install it into the game's mod folder",
	Long: `Build a mod with the automation tool and install the result.

The cook output is staged into a throwaway session directory, the
highest-numbered pakchunk (the one containing the mod's content) is
selected, and the selected files are copied to the configured output
folder renamed to <mod-name>.pak (plus .utoc/.ucas when IoStore is
enabled).

Examples:
  modkit build MyMod
  modkit build MyMod --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	modName := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Build Mod"))
	fmt.Printf("%s Mod: %s\n", infoIcon, PathStyle.Render(modName))

	pipeline := modbuild.New(cfg, notify.NewTerminal(os.Stdout))
	if err := pipeline.BuildMod(cmd.Context(), modName); err != nil {
		fmt.Fprintln(os.Stderr, errorIcon+" "+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
