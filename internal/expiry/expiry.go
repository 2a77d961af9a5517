// Package expiry runs the side effects of a countdown reaching zero.
package expiry

import (
	"context"
	"errors"
	"log/slog"

	"sleepat/internal/metrics"
)

//go:generate mockgen -source=expiry.go -destination=mock_expiry_test.go -package=expiry

// MediaPauser stops whatever is playing.
type MediaPauser interface {
	Pause(ctx context.Context) error
}

// ScreenLocker locks the session when it has permission to.
type ScreenLocker interface {
	LockScreen(ctx context.Context) error
}

type Effects struct {
	media        MediaPauser
	lock         ScreenLocker
	lockOnExpiry bool
	metrics      metrics.Recorder
	logger       *slog.Logger
}

func New(media MediaPauser, lock ScreenLocker, lockOnExpiry bool, rec metrics.Recorder, logger *slog.Logger) *Effects {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Effects{
		media:        media,
		lock:         lock,
		lockOnExpiry: lockOnExpiry,
		metrics:      rec,
		logger:       logger,
	}
}

// Fire pauses media and then locks the screen. A failing effect does not
// prevent the next one from running; all failures are returned joined.
func (e *Effects) Fire(ctx context.Context) error {
	var errs []error

	if e.media != nil {
		if err := e.media.Pause(ctx); err != nil {
			e.logger.Warn("expiry effect failed", "effect", "media", "error", err)
			e.metrics.RecordEffectFailure("media")
			errs = append(errs, err)
		}
	}

	if e.lockOnExpiry && e.lock != nil {
		if err := e.lock.LockScreen(ctx); err != nil {
			e.logger.Warn("expiry effect failed", "effect", "lock", "error", err)
			e.metrics.RecordEffectFailure("lock")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
