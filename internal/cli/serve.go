package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the timer daemon",
		Long:  `Runs the daemon that owns the countdown and exposes it over HTTP (and Redis when configured).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := newDaemon(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer d.close(context.WithoutCancel(ctx))

			l, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
			}

			if term.IsTerminal(int(os.Stderr.Fd())) {
				printBanner(cmd.ErrOrStderr())
			}
			logger.Info("sleepat daemon started",
				"listen", l.Addr().String(),
				"database", cfg.Database,
				"redis", cfg.Redis.Addr != "",
			)

			return d.run(ctx, l)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (overrides config)")
	return cmd
}
