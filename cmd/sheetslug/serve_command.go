package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sheetslug/internal/api"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve records over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			loader, err := ctx.newLoader(cmd.Context())
			if err != nil {
				return err
			}

			address := cfg.API.Bind
			if trimmed := strings.TrimSpace(bind); trimmed != "" {
				address = trimmed
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(loader, api.Options{
				Token:     cfg.API.Token,
				SourceURL: cfg.Source.URL,
				Logger:    ctx.log(),
			})
			return srv.ListenAndServe(runCtx, address)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from api.bind)")
	return cmd
}
