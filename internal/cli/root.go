// Package cli wires the sleepat commands together.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sleepat/internal/client"
	"sleepat/internal/config"
	"sleepat/internal/logging"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
	server     string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "sleepat",
		Short:         "A sleep timer that pauses your media when it runs out",
		Long:          `sleepat runs a countdown in a background daemon. When it expires the daemon pauses whatever is playing and can lock the screen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.server, "server", "", "daemon address for client commands")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newStartCmd(opts),
		newStopCmd(opts),
		newExtendCmd(opts),
		newStatusCmd(opts),
		newWatchCmd(opts),
		newDurationCmd(opts),
		newLanguageCmd(opts),
		newLockCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load reads the configuration and applies the persistent flag overrides.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.server != "" {
		cfg.Server = o.server
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(os.Stderr, level, cfg.Log.Format), nil
}

func (o *rootOptions) client() (*client.Client, error) {
	cfg, _, err := o.load()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.Server), nil
}
