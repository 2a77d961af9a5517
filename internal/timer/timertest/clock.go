// Package timertest provides a manually driven clock for countdown tests.
package timertest

import (
	"sync"
	"time"

	"sleepat/internal/timer"
)

// Clock is a timer.Clock whose tickers only fire when Advance is called.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*Ticker
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)}
}

func (c *Clock) NewTicker(d time.Duration) timer.Ticker {
	t := &Ticker{
		interval: d,
		c:        make(chan time.Time),
		stopped:  make(chan struct{}),
	}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Advance moves the clock forward and delivers one tick per elapsed interval
// to every live ticker. Each delivery blocks until the receiver takes it or
// the ticker is stopped.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	live := c.tickers[:0]
	for _, t := range c.tickers {
		if !t.isStopped() {
			live = append(live, t)
		}
	}
	c.tickers = live
	tickers := append([]*Ticker(nil), live...)
	c.mu.Unlock()

	for _, t := range tickers {
		t.advance(d, now)
	}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Live returns the number of tickers that have not been stopped.
func (c *Clock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

type Ticker struct {
	interval time.Duration
	pending  time.Duration
	c        chan time.Time
	stopped  chan struct{}
	once     sync.Once
}

func (t *Ticker) C() <-chan time.Time { return t.c }

func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *Ticker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

func (t *Ticker) advance(d time.Duration, now time.Time) {
	t.pending += d
	for t.pending >= t.interval {
		t.pending -= t.interval
		select {
		case t.c <- now:
		case <-t.stopped:
			return
		case <-time.After(5 * time.Second):
			return
		}
	}
}
