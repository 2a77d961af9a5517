// Package media pauses whatever media player is currently playing.
package media

import (
	"context"
	"fmt"
	"log/slog"

	"sleepat/internal/process"
)

// Pauser runs a player-control command, playerctl by default.
type Pauser struct {
	runner  process.Runner
	command []string
	logger  *slog.Logger
}

func NewPauser(runner process.Runner, command []string, logger *slog.Logger) *Pauser {
	return &Pauser{
		runner:  runner,
		command: command,
		logger:  logger,
	}
}

func (p *Pauser) Pause(ctx context.Context) error {
	if err := p.runner.Run(ctx, p.command); err != nil {
		return fmt.Errorf("pause media: %w", err)
	}
	p.logger.Info("media paused")
	return nil
}
