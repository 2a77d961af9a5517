package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepat/internal/timelog"
)

func sampleLogs() []timelog.TimeLog {
	start := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	return []timelog.TimeLog{
		{
			ID:              "b",
			StartedAt:       start.Add(24 * time.Hour),
			SelectedSeconds: 1500,
			Outcome:         timelog.OutcomeStopped,
			Duration:        2 * time.Second,
		},
		{
			ID:              "a",
			StartedAt:       start,
			SelectedSeconds: 900,
			ExtendedSeconds: 600,
			Outcome:         timelog.OutcomeExpired,
			Duration:        25 * time.Minute,
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleLogs())

	assert.Equal(t, Summary{Runs: 2, Expired: 1, Stopped: 1, Slept: 25*time.Minute + 2*time.Second}, s)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleLogs()))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "STARTED"))
	assert.Contains(t, lines[1], "25:00")
	assert.Contains(t, lines[1], "00:02")
	assert.Contains(t, lines[1], "stopped")
	assert.Contains(t, lines[2], "expired")
	assert.Equal(t, "2 runs, 1 expired, 1 stopped, 25:02 counted down", lines[4])
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleLogs(), time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDF_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, nil, time.Now()))
	assert.NotZero(t, buf.Len())
}
