package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"sleepat/internal/client"
	"sleepat/internal/host"
	"sleepat/internal/timer"
)

func printStatus(w io.Writer, st host.Status) {
	state := "idle"
	if st.State.Running {
		state = "running"
	}
	lock := "unavailable"
	if st.LockCapable {
		lock = "active"
	}
	fmt.Fprintf(w, "%s  %s  (selected %d min, language %s, screen lock %s)\n",
		st.Formatted, state, st.State.SelectedMinutes(), st.Language, lock)
}

func parseMinutes(arg string) (int, error) {
	minutes, err := strconv.Atoi(arg)
	if err != nil || minutes <= 0 || minutes > timer.MaxMinutes {
		return 0, fmt.Errorf("%w: %q", timer.ErrInvalidDuration, arg)
	}
	return minutes, nil
}

// clientCommand runs fn against the daemon and prints the resulting status.
func clientCommand(opts *rootOptions, fn func(cmd *cobra.Command, c *client.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := opts.client()
		if err != nil {
			return err
		}
		if err := fn(cmd, c, args); err != nil {
			return err
		}
		st, err := c.Status(cmd.Context())
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), st)
		return nil
	}
}

func newStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start [minutes]",
		Short: "Start the countdown, from the selected duration when minutes is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: clientCommand(opts, func(cmd *cobra.Command, c *client.Client, args []string) error {
			minutes := 0
			if len(args) == 1 {
				var err error
				if minutes, err = parseMinutes(args[0]); err != nil {
					return err
				}
			}
			return c.Start(cmd.Context(), minutes)
		}),
	}
}

func newStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Cancel the countdown",
		Args:  cobra.NoArgs,
		RunE: clientCommand(opts, func(cmd *cobra.Command, c *client.Client, args []string) error {
			return c.Stop(cmd.Context())
		}),
	}
}

func newExtendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extend",
		Short: "Add time to the running countdown",
		Args:  cobra.NoArgs,
		RunE: clientCommand(opts, func(cmd *cobra.Command, c *client.Client, args []string) error {
			return c.Extend(cmd.Context())
		}),
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the countdown",
		Args:  cobra.NoArgs,
		RunE: clientCommand(opts, func(cmd *cobra.Command, c *client.Client, args []string) error {
			return nil
		}),
	}
}

func newDurationCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duration <minutes>",
		Short: "Select the countdown length",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(opts, func(cmd *cobra.Command, c *client.Client, args []string) error {
			minutes, err := parseMinutes(args[0])
			if err != nil {
				return err
			}
			return c.SetDuration(cmd.Context(), minutes)
		}),
	}
}

func newLanguageCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "language <code>",
		Short: "Switch the notification language (es, en)",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(opts, func(cmd *cobra.Command, c *client.Client, args []string) error {
			return c.SetLanguage(cmd.Context(), args[0])
		}),
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print every countdown change until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			states, err := c.Watch(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for st := range states {
				state := "idle"
				if st.Running {
					state = "running"
				}
				fmt.Fprintf(out, "%s  %s\n", timer.FormatRemaining(st.RemainingSeconds), state)
			}
			return nil
		},
	}
}
