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

var (
	// zipNoBuild skips the build-before-zip step regardless of config
	zipNoBuild bool
)

// zipCmd bundles a built mod into a distributable zip.
var zipCmd = &cobra.Command{
	Use:   "zip <mod-name>",
	Short: "Zip a built mod for distribution",
	Long: `Bundle a mod's built files into a zip archive.

The archive contains <mod-name>.pak and, when both are present,
<mod-name>.utoc and <mod-name>.ucas, taken from the configured output
folder. With always_build_before_zipping set (the default) the mod is
rebuilt first; --no-build skips that.

Examples:
  modkit zip MyMod
  modkit zip MyMod --no-build`,
	Args: cobra.ExactArgs(1),
	RunE: runZip,
}

func init() {
	zipCmd.Flags().BoolVar(&zipNoBuild, "no-build", false, "zip the existing build output without rebuilding")
}

func runZip(cmd *cobra.Command, args []string) error {
	modName := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if zipNoBuild {
		cfg.AlwaysBuildBeforeZipping = false
	}

	fmt.Println(TitleStyle.Render("Zip Mod"))
	fmt.Printf("%s Mod: %s\n", infoIcon, PathStyle.Render(modName))

	pipeline := modbuild.New(cfg, notify.NewTerminal(os.Stdout))
	if err := pipeline.ZipMod(cmd.Context(), modName); err != nil {
		fmt.Fprintln(os.Stderr, errorIcon+" "+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
