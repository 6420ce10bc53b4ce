package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	autoCmd := &cobra.Command{
		Use:   "auto <game-root>",
		Short: "Discover the build and summarize the directory tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runAuto,
	}
	rootCmd.AddCommand(autoCmd)
}

func runAuto(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	facade, _, err := openFacade(ctx, cmd, args[0], "")
	if err != nil {
		return err
	}

	layout := facade.Layout()
	browser, err := facade.Browser(ctx)
	if err != nil {
		return err
	}

	files, err := browser.ListFiles()
	if err != nil {
		return err
	}
	dirs, err := browser.ListDirectories()
	if err != nil {
		return err
	}

	fmt.Printf("build %d\n", layout.Build)
	fmt.Printf("pkg root: %s\n", layout.PkgRoot)
	fmt.Printf("idx root: %s\n", layout.IdxRoot)
	fmt.Printf("root: %d files, %d directories\n", len(files), len(dirs))
	return nil
}
