package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	treeCmd := &cobra.Command{
		Use:   "tree <game-root> [path]",
		Short: "List the files and directories at a path",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runTree,
	}
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	facade, _, err := openFacade(ctx, cmd, args[0], "")
	if err != nil {
		return err
	}

	browser, err := facade.Browser(ctx)
	if err != nil {
		return err
	}

	if len(args) == 2 && args[1] != "" {
		if err := browser.Navigate(args[1]); err != nil {
			return err
		}
	}

	dirs, err := browser.ListDirectories()
	if err != nil {
		return err
	}
	files, err := browser.ListFiles()
	if err != nil {
		return err
	}

	for _, d := range dirs {
		fmt.Printf("%s/\n", d)
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}
