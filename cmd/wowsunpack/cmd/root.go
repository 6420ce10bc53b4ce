// Package cmd is the wowsunpack command-line tree: auto, tree, search,
// extract, browse, serve, discover.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wowsunpack/wowsunpack/internal/cache"
	"github.com/wowsunpack/wowsunpack/internal/config"
	"github.com/wowsunpack/wowsunpack/internal/logging"
	"github.com/wowsunpack/wowsunpack/internal/unpacker"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "wowsunpack",
	Short: "Extract World of Warships pack-file archives",
	Long:  `wowsunpack reads the game's idx/pkg archive format and extracts files by exact path or glob pattern.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads Config via viper, binding the given flag set's flags
// over environment and file values. Validation is deferred to the caller,
// since subcommands may still need to apply positional-argument overrides
// (e.g. game-root) before the result is complete.
func loadConfig(flags *cobra.Command) (*config.Config, error) {
	v := viper.New()
	if err := v.BindPFlags(flags.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return config.Load(v, configFile)
}

// openFacade wires logging, loads Config (with gameRoot/destRoot positional
// arguments taking precedence over file/env/flag values), and returns a
// ready Facade with its tree built.
func openFacade(ctx context.Context, cmd *cobra.Command, gameRoot, destRoot string) (*unpacker.Facade, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if gameRoot != "" {
		cfg.GameRoot = gameRoot
	}
	if destRoot != "" {
		cfg.DestRoot = destRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if _, err := logging.Setup(cfg.Log); err != nil {
		return nil, nil, err
	}

	var idxCache *cache.Cache
	if cfg.CacheDB != "" {
		idxCache, err = cache.Open(cfg.CacheDB)
		if err != nil {
			return nil, nil, fmt.Errorf("opening idx cache: %w", err)
		}
	}

	facade, err := unpacker.AutoWithCache(cfg.GameRoot, cfg.DestRoot, idxCache)
	if err != nil {
		return nil, nil, fmt.Errorf("discovering game install: %w", err)
	}
	if err := facade.BuildTree(ctx); err != nil {
		return nil, nil, fmt.Errorf("building directory tree: %w", err)
	}

	return facade, cfg, nil
}
