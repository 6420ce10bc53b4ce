package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	searchCmd := &cobra.Command{
		Use:   "search <game-root> <glob>",
		Short: "List files matching a glob pattern without extracting them",
		Args:  cobra.ExactArgs(2),
		RunE:  runSearch,
	}
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	facade, _, err := openFacade(ctx, cmd, args[0], "")
	if err != nil {
		return err
	}

	recs, err := facade.Search(ctx, args[1])
	if err != nil {
		return err
	}

	for _, rec := range recs {
		fmt.Println(rec.Path)
	}
	return nil
}
