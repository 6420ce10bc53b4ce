package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/wowsunpack/wowsunpack/internal/discovery"
)

func init() {
	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Probe a set of well-known install roots for a complete build",
		Args:  cobra.NoArgs,
		RunE:  runDiscover,
	}
	rootCmd.AddCommand(discoverCmd)
}

// candidateRoots lists install locations worth probing on this platform.
// This is a filesystem-only heuristic; it intentionally does not touch
// the Windows registry (see internal/discovery's registry_windows.go for
// that platform entrypoint, which callers may use directly instead).
func candidateRoots() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Games\World_of_Warships`,
			`C:\Program Files (x86)\Steam\steamapps\common\World of Warships`,
		}
	case "darwin":
		return []string{
			filepath.Join(home, "Applications", "World of Warships.app", "Contents", "Resources"),
		}
	default:
		return []string{
			filepath.Join(home, ".wine", "drive_c", "Games", "World_of_Warships"),
			filepath.Join(home, ".local", "share", "Steam", "steamapps", "common", "World of Warships"),
		}
	}
}

func runDiscover(cmd *cobra.Command, args []string) error {
	found := 0
	for _, root := range candidateRoots() {
		layout, err := discovery.Find(root)
		if err != nil {
			fmt.Printf("%s: %v\n", root, err)
			continue
		}
		found++
		fmt.Printf("%s: build %d (idx root %s)\n", root, layout.Build, layout.IdxRoot)
	}

	if found == 0 {
		return fmt.Errorf("no complete build found in any well-known install root")
	}
	return nil
}
