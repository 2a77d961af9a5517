package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sleepat/internal/report"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent countdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			logs, err := c.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if pdfPath == "" {
				return report.WriteText(cmd.OutOrStdout(), logs)
			}

			f, err := os.Create(pdfPath)
			if err != nil {
				return err
			}
			if err := report.WritePDF(f, logs, time.Now()); err != nil {
				f.Close()
				return fmt.Errorf("failed to write report: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "PDF report written to %s\n", pdfPath)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write the history as a PDF to this file")
	return cmd
}
