package timelog

import "time"

type Outcome string

const (
	OutcomeExpired  Outcome = "expired"
	OutcomeStopped  Outcome = "stopped"
	OutcomeShutdown Outcome = "shutdown"
)

// TimeLog represents one finished countdown run.
type TimeLog struct {
	ID              string        `json:"id"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         time.Time     `json:"ended_at"`
	SelectedSeconds int           `json:"selected_seconds"`
	ExtendedSeconds int           `json:"extended_seconds"`
	Outcome         Outcome       `json:"outcome"`
	Duration        time.Duration `json:"duration"`
}

// Planned is the total countdown the run was asked for, extensions included.
func (l TimeLog) Planned() time.Duration {
	return time.Duration(l.SelectedSeconds+l.ExtendedSeconds) * time.Second
}
