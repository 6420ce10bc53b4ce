package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wowsunpack/wowsunpack/internal/extract"
	"github.com/wowsunpack/wowsunpack/internal/query"
)

func init() {
	browseCmd := &cobra.Command{
		Use:   "browse <game-root>",
		Short: "Interactively walk the directory tree from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runBrowse,
	}
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	facade, cfg, err := openFacade(ctx, cmd, args[0], "")
	if err != nil {
		return err
	}

	browser, err := facade.Browser(ctx)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("cd <dir> | ls | get <name> | back | pwd | quit")
	for {
		fmt.Printf("%s> ", browser.Path())
		if !scanner.Scan() {
			return nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "pwd":
			fmt.Println(browser.Path())
		case "back":
			browser.Back()
		case "ls":
			runBrowseLs(browser)
		case "cd":
			if len(fields) != 2 {
				fmt.Println("usage: cd <dir>")
				continue
			}
			if err := browser.Navigate(fields[1]); err != nil {
				fmt.Println(err)
			}
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <name>")
				continue
			}
			runBrowseGet(ctx, browser, facade.PkgRoot(), cfg.DestRoot, cfg.Workers, fields[1])
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func runBrowseLs(browser *query.Browser) {
	dirs, err := browser.ListDirectories()
	if err != nil {
		fmt.Println(err)
		return
	}
	files, err := browser.ListFiles()
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, d := range dirs {
		fmt.Printf("%s/\n", d)
	}
	for _, f := range files {
		fmt.Println(f)
	}
}

func runBrowseGet(ctx context.Context, browser *query.Browser, pkgRoot, destRoot string, workers int, sub string) {
	recs, err := browser.UnpackSub(sub)
	if err != nil {
		fmt.Println(err)
		return
	}

	outcomes := extract.New(pkgRoot, destRoot).Batch(ctx, recs, workers)
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("FAIL %s: %v\n", o.Record.Path, o.Err)
			continue
		}
		fmt.Printf("OK   %s\n", o.Path)
	}
}
