// Package report renders the run history as a text table or a PDF.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/go-pdf/fpdf"

	"sleepat/internal/timelog"
	"sleepat/internal/timer"
)

// Summary aggregates a set of runs.
type Summary struct {
	Runs     int
	Expired  int
	Stopped  int
	Shutdown int
	Slept    time.Duration
}

func Summarize(logs []timelog.TimeLog) Summary {
	var s Summary
	for _, l := range logs {
		s.Runs++
		switch l.Outcome {
		case timelog.OutcomeExpired:
			s.Expired++
		case timelog.OutcomeStopped:
			s.Stopped++
		case timelog.OutcomeShutdown:
			s.Shutdown++
		}
		s.Slept += l.Duration
	}
	return s
}

func formatDuration(d time.Duration) string {
	return timer.FormatRemaining(int(d.Seconds()))
}

// WriteText writes logs as an aligned table followed by a summary line.
func WriteText(w io.Writer, logs []timelog.TimeLog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tPLANNED\tRAN\tOUTCOME")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			l.StartedAt.Local().Format("2006-01-02 15:04"),
			formatDuration(l.Planned()),
			formatDuration(l.Duration),
			l.Outcome,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := Summarize(logs)
	_, err := fmt.Fprintf(w, "\n%d runs, %d expired, %d stopped, %s counted down\n",
		s.Runs, s.Expired, s.Stopped, formatDuration(s.Slept))
	return err
}

// WritePDF writes logs as a one-table PDF document.
func WritePDF(w io.Writer, logs []timelog.TimeLog, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("sleepat history", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Sleep timer history")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, "Generated "+generatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(12)

	widths := []float64{55, 35, 35, 40}
	pdf.SetFont("Arial", "B", 12)
	for i, header := range []string{"Started", "Planned", "Ran", "Outcome"} {
		pdf.CellFormat(widths[i], 8, header, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	if len(logs) == 0 {
		pdf.Cell(0, 8, "No runs recorded.")
		pdf.Ln(8)
	}
	for _, l := range logs {
		row := []string{
			l.StartedAt.Local().Format("2006-01-02 15:04"),
			formatDuration(l.Planned()),
			formatDuration(l.Duration),
			string(l.Outcome),
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	s := Summarize(logs)
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("%d runs, %d expired, %d stopped, %s counted down",
		s.Runs, s.Expired, s.Stopped, formatDuration(s.Slept)))

	return pdf.Output(w)
}
