package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrInvalidDuration = errors.New("duration must be between 1 and 1440 minutes")

// ExpiryFunc runs once when a countdown reaches zero on its own.
type ExpiryFunc func(ctx context.Context)

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithDefaultMinutes(minutes int) Option {
	return func(c *Controller) {
		if minutes > 0 && minutes <= MaxMinutes {
			c.state.SelectedSeconds = minutes * 60
			c.state.RemainingSeconds = minutes * 60
		}
	}
}

func WithOnExpiry(fn ExpiryFunc) Option {
	return func(c *Controller) {
		c.onExpiry = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns the countdown state and the single loop that drives it.
// All mutations happen under mu; a loop only applies a tick while the stop
// channel it was started with is still the current one.
type Controller struct {
	mu       sync.RWMutex
	state    State
	interval time.Duration
	clock    Clock
	stopChan chan struct{}
	closed   bool

	onExpiry ExpiryFunc
	logger   *slog.Logger
	subs     *broadcaster

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts ...Option) *Controller {
	c := &Controller{
		state: State{
			SelectedSeconds:  DefaultMinutes * 60,
			RemainingSeconds: DefaultMinutes * 60,
		},
		interval: time.Second,
		clock:    SystemClock,
		logger:   slog.Default(),
		subs:     newBroadcaster(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// SetDuration selects a new countdown length. It is ignored while running.
func (c *Controller) SetDuration(minutes int) error {
	if minutes <= 0 || minutes > MaxMinutes {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, minutes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Running {
		return nil
	}

	seconds := minutes * 60
	if c.state.SelectedSeconds == seconds && c.state.RemainingSeconds == seconds {
		return nil
	}
	c.state.SelectedSeconds = seconds
	c.state.RemainingSeconds = seconds
	c.subs.publish(c.state)
	return nil
}

// Start begins a countdown from the selected duration. It reports whether a
// new run was started.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Running || c.closed {
		return false
	}

	c.state.Running = true
	c.state.RemainingSeconds = c.state.SelectedSeconds
	c.stopChan = make(chan struct{})

	ticker := c.clock.NewTicker(c.interval)
	c.wg.Add(1)
	go c.loop(c.stopChan, ticker)

	c.subs.publish(c.state)
	c.logger.Debug("countdown started", "selected_seconds", c.state.SelectedSeconds)
	return true
}

// Stop cancels the countdown and rewinds the remaining time to the selected
// duration. It reports whether a run was cancelled.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasRunning := c.state.Running
	if c.stopChan != nil {
		close(c.stopChan)
		c.stopChan = nil
	}

	changed := wasRunning || c.state.RemainingSeconds != c.state.SelectedSeconds
	c.state.Running = false
	c.state.RemainingSeconds = c.state.SelectedSeconds
	if changed {
		c.subs.publish(c.state)
	}
	if wasRunning {
		c.logger.Debug("countdown stopped")
	}
	return wasRunning
}

// Extend adds seconds to a running countdown without touching the tick
// schedule. Non-positive values extend by DefaultExtendSeconds.
func (c *Controller) Extend(seconds int) bool {
	if seconds <= 0 {
		seconds = DefaultExtendSeconds
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Running {
		return false
	}
	c.state.RemainingSeconds += seconds
	c.subs.publish(c.state)
	return true
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Running
}

// Subscribe returns a channel that first receives the current state and then
// every published change. The channel is closed by the returned func or by Close.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subs.subscribe(c.state)
}

// Close cancels a running countdown, waits for its loop to exit and closes
// every subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.stopChan != nil {
		close(c.stopChan)
		c.stopChan = nil
	}
	c.state.Running = false
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.subs.close()
}

type tickResult int

const (
	tickContinue tickResult = iota
	tickExpired
	tickCancelled
)

func (c *Controller) loop(stop chan struct{}, ticker Ticker) {
	defer c.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			switch c.tick(stop) {
			case tickExpired:
				c.expire()
				return
			case tickCancelled:
				return
			}
		}
	}
}

func (c *Controller) tick(stop chan struct{}) tickResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopChan != stop || !c.state.Running {
		return tickCancelled
	}

	c.state.RemainingSeconds--
	if c.state.RemainingSeconds <= 0 {
		c.state.RemainingSeconds = 0
		c.state.Running = false
		c.stopChan = nil
		c.subs.publish(c.state)
		return tickExpired
	}
	c.subs.publish(c.state)
	return tickContinue
}

func (c *Controller) expire() {
	c.logger.Info("countdown expired")
	if c.onExpiry != nil {
		c.onExpiry(c.ctx)
	}
}
