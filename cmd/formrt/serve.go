package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formruntime/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		dir     string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every definition of a directory as a live preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dir != "" {
				cfg.Forms.Dir = dir
			}
			if noWatch {
				cfg.Forms.Watch = false
			}

			options, err := a.orchestratorOptions()
			if err != nil {
				return err
			}
			srv, err := server.New(cfg,
				server.WithLogger(a.logger),
				server.WithOrchestratorOptions(options...),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address, defaults to server.addr")
	f.StringVar(&dir, "dir", "", "definitions directory, defaults to forms.dir")
	f.BoolVar(&noWatch, "no-watch", false, "do not reload definitions when files change")
	return cmd
}
