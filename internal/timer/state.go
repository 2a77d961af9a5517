package timer

import (
	"fmt"
	"time"
)

const (
	DefaultMinutes       = 15
	DefaultExtendSeconds = 600
	// MaxMinutes caps a selected duration at one day.
	MaxMinutes = 24 * 60
)

// State is a snapshot of the countdown.
type State struct {
	SelectedSeconds  int  `json:"selected_seconds"`
	RemainingSeconds int  `json:"remaining_seconds"`
	Running          bool `json:"running"`
}

func (s State) Remaining() time.Duration {
	return time.Duration(s.RemainingSeconds) * time.Second
}

func (s State) SelectedMinutes() int {
	return s.SelectedSeconds / 60
}

// Progress is the consumed fraction of the current run, between 0 and 1.
func (s State) Progress() float64 {
	if s.SelectedSeconds <= 0 || !s.Running {
		return 0
	}
	if s.RemainingSeconds >= s.SelectedSeconds {
		return 0
	}
	return 1 - float64(s.RemainingSeconds)/float64(s.SelectedSeconds)
}

func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
