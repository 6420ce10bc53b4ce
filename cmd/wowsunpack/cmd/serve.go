package cmd

import (
	"log/slog"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"golang.org/x/net/webdav"

	"github.com/wowsunpack/wowsunpack/internal/api"
	"github.com/wowsunpack/wowsunpack/internal/browsefs"
)

var serveWebDAV bool

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve <game-root>",
		Short: "Start the HTTP API, and optionally a read-only WebDAV browse endpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  runServe,
	}
	serveCmd.Flags().BoolVar(&serveWebDAV, "webdav", false, "also mount a read-only WebDAV endpoint at /dav")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	facade, cfg, err := openFacade(ctx, cmd, args[0], "")
	if err != nil {
		return err
	}

	server := api.New(facade, cfg.Workers)
	app := server.App()

	if serveWebDAV {
		tree, err := facade.Tree(ctx)
		if err != nil {
			return err
		}
		dav := &webdav.Handler{
			Prefix:     "/dav",
			FileSystem: browsefs.AsWebDAV(browsefs.New(tree, facade.PkgRoot())),
			LockSystem: webdav.NewMemLS(),
		}
		app.All("/dav/*", adaptor.HTTPHandler(dav))
	}

	addr := cfg.API.Addr
	slog.InfoContext(ctx, "serve: listening", "addr", addr, "webdav", serveWebDAV)
	return app.Listen(addr)
}
