package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sleepat/internal/api"
)

func printLock(w io.Writer, ls api.LockStatus) {
	switch {
	case ls.Active:
		fmt.Fprintln(w, "screen lock: active")
	case ls.Granted:
		fmt.Fprintln(w, "screen lock: permitted, but the lock command is unavailable")
	default:
		fmt.Fprintln(w, "screen lock: not permitted")
	}
}

func newLockCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Manage the screen lock permission",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether the screen will be locked on expiry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := opts.client()
				if err != nil {
					return err
				}
				ls, err := c.Lock(cmd.Context())
				if err != nil {
					return err
				}
				printLock(cmd.OutOrStdout(), ls)
				return nil
			},
		},
		&cobra.Command{
			Use:   "enable",
			Short: "Allow sleepat to lock the screen when the countdown expires",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := opts.client()
				if err != nil {
					return err
				}
				ls, err := c.GrantLock(cmd.Context())
				if err != nil {
					return err
				}
				printLock(cmd.OutOrStdout(), ls)
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Revoke the screen lock permission",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := opts.client()
				if err != nil {
					return err
				}
				ls, err := c.RevokeLock(cmd.Context())
				if err != nil {
					return err
				}
				printLock(cmd.OutOrStdout(), ls)
				return nil
			},
		},
	)
	return cmd
}
