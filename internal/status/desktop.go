package status

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"sleepat/internal/process"
)

const syncHint = "string:x-canonical-private-synchronous:sleepat"

// Desktop mirrors notices through notify-send. Every notice carries the same
// synchronous hint so a refresh replaces the previous bubble.
type Desktop struct {
	runner  process.Runner
	command string
	logger  *slog.Logger

	mu        sync.Mutex
	lastTitle string
}

func NewDesktop(runner process.Runner, command string, logger *slog.Logger) *Desktop {
	if command == "" {
		command = "notify-send"
	}
	return &Desktop{
		runner:  runner,
		command: command,
		logger:  logger,
	}
}

// Available reports whether the notify command can be found.
func (d *Desktop) Available() bool {
	return d.runner.Available(d.command)
}

func (d *Desktop) Show(ctx context.Context, n Notice) error {
	body := n.Body
	if len(n.Actions) > 0 {
		labels := make([]string, 0, len(n.Actions))
		for _, a := range n.Actions {
			labels = append(labels, a.Label)
		}
		body += "\n" + strings.Join(labels, " · ")
	}

	argv := []string{
		d.command,
		"--app-name=sleepat",
		"--urgency=low",
		"--hint=" + syncHint,
		n.Title,
		body,
	}
	if err := d.runner.Run(ctx, argv); err != nil {
		return fmt.Errorf("desktop notice: %w", err)
	}

	d.mu.Lock()
	d.lastTitle = n.Title
	d.mu.Unlock()
	return nil
}

// Clear replaces the current bubble with one that expires immediately.
func (d *Desktop) Clear(ctx context.Context) error {
	d.mu.Lock()
	title := d.lastTitle
	d.lastTitle = ""
	d.mu.Unlock()

	if title == "" {
		return nil
	}
	argv := []string{
		d.command,
		"--app-name=sleepat",
		"--expire-time=1",
		"--hint=" + syncHint,
		title,
		"",
	}
	if err := d.runner.Run(ctx, argv); err != nil {
		return fmt.Errorf("clear desktop notice: %w", err)
	}
	d.logger.Debug("desktop notice cleared")
	return nil
}
