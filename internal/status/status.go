// Package status keeps the user informed about a running countdown: an
// in-memory board served over HTTP and an optional desktop notification.
package status

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Action names a button on the status display.
type Action string

const (
	ActionStop   Action = "stop"
	ActionExtend Action = "extend"
)

type ActionLabel struct {
	Action Action `json:"action"`
	Label  string `json:"label"`
}

// Notice is what the status display shows while a countdown runs.
type Notice struct {
	Title            string        `json:"title"`
	Body             string        `json:"body"`
	RemainingSeconds int           `json:"remaining_seconds"`
	Actions          []ActionLabel `json:"actions"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type Display interface {
	Show(ctx context.Context, n Notice) error
	Clear(ctx context.Context) error
}

// Board remembers the latest notice.
type Board struct {
	mu      sync.RWMutex
	current *Notice
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) Show(_ context.Context, n Notice) error {
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = &n
	return nil
}

func (b *Board) Clear(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
	return nil
}

// Current returns the notice on display, if any.
func (b *Board) Current() (Notice, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

// HasAction reports whether the notice on display offers action.
func (b *Board) HasAction(action Action) bool {
	n, ok := b.Current()
	if !ok {
		return false
	}
	for _, a := range n.Actions {
		if a.Action == action {
			return true
		}
	}
	return false
}

// Multi shows every notice on all of its displays.
type Multi []Display

func (m Multi) Show(ctx context.Context, n Notice) error {
	var errs []error
	for _, d := range m {
		if err := d.Show(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Clear(ctx context.Context) error {
	var errs []error
	for _, d := range m {
		if err := d.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
