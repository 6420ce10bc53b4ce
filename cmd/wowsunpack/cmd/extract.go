package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wowsunpack/wowsunpack/internal/extract"
)

var extractWorkers int

func init() {
	extractCmd := &cobra.Command{
		Use:   "extract <game-root> <path-or-glob> <dest>",
		Short: "Extract files matching an exact path or a glob pattern",
		Args:  cobra.ExactArgs(3),
		RunE:  runExtract,
	}
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "worker pool size (0 = use config default)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	facade, cfg, err := openFacade(ctx, cmd, args[0], args[2])
	if err != nil {
		return err
	}

	workers := extractWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	target := args[1]
	var outcomes []extract.Outcome
	if strings.Contains(target, "*") {
		outcomes, err = facade.ExtractGlob(ctx, target, workers)
	} else {
		outcomes, err = facade.ExtractExact(ctx, target, workers)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", o.Record.Path, o.Err)
			continue
		}
		fmt.Printf("OK   %s\n", o.Record.Path)
	}

	fmt.Printf("%d extracted, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to extract", failed, len(outcomes))
	}
	return nil
}
