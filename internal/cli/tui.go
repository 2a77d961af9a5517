package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sleepat/internal/i18n"
	"sleepat/internal/logging"
	"sleepat/internal/ui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	var standalone bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal interface",
		Long:  `Opens the terminal interface against the running daemon, or against an in-process timer with --standalone.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("tui needs an interactive terminal")
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var backend ui.Backend
			var catalog *i18n.Catalog
			var language string

			if standalone {
				// stderr belongs to the alt screen, so the host logs to a file
				logFile, err := openLogFile(cfg.DataDir)
				if err != nil {
					return err
				}
				defer logFile.Close()
				level, _ := logging.ParseLevel(cfg.Log.Level)
				logger = logging.New(logFile, level, cfg.Log.Format)

				d, err := newDaemon(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer d.close(context.WithoutCancel(ctx))

				go func() {
					if err := d.run(ctx, nil); err != nil {
						logger.Error("timer host stopped", "error", err)
					}
				}()
				backend = d.service
				catalog = d.catalog
				language = d.service.Language()
			} else {
				c, err := opts.client()
				if err != nil {
					return err
				}
				st, err := c.Status(ctx)
				if err != nil {
					return fmt.Errorf("%w (is `sleepat serve` running? use --standalone to run without it)", err)
				}
				catalog, err = i18n.Load()
				if err != nil {
					return err
				}
				backend = c
				language = st.Language
			}

			p := tea.NewProgram(
				ui.NewModel(ctx, backend, catalog, language),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&standalone, "standalone", false, "run the timer in this process instead of the daemon")
	return cmd
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
