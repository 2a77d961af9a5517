package timer_test

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepat/internal/timer"
	"sleepat/internal/timer/timertest"
)

func newController(t *testing.T, opts ...timer.Option) (*timer.Controller, *timertest.Clock, *atomic.Int32) {
	t.Helper()
	clock := timertest.NewClock()
	fired := &atomic.Int32{}
	opts = append([]timer.Option{
		timer.WithClock(clock),
		timer.WithOnExpiry(func(ctx context.Context) { fired.Add(1) }),
	}, opts...)
	c := timer.New(opts...)
	t.Cleanup(c.Close)
	return c, clock, fired
}

func eventuallyState(t *testing.T, c *timer.Controller, want timer.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.State() == want
	}, 2*time.Second, time.Millisecond, "want %+v, have %+v", want, c.State())
}

func TestNew_DefaultState(t *testing.T) {
	c, _, _ := newController(t)

	assert.Equal(t, timer.State{SelectedSeconds: 900, RemainingSeconds: 900}, c.State())
	assert.False(t, c.Running())
}

func TestSetDuration_WhileIdle(t *testing.T) {
	c, _, _ := newController(t)

	for _, minutes := range []int{1, 25, 59, 180} {
		require.NoError(t, c.SetDuration(minutes))
		assert.Equal(t, minutes*60, c.State().RemainingSeconds)
		assert.Equal(t, minutes*60, c.State().SelectedSeconds)
	}
}

func TestSetDuration_RejectsNonPositive(t *testing.T) {
	c, _, _ := newController(t)

	assert.ErrorIs(t, c.SetDuration(0), timer.ErrInvalidDuration)
	assert.ErrorIs(t, c.SetDuration(-5), timer.ErrInvalidDuration)
	assert.Equal(t, 900, c.State().SelectedSeconds)
}

func TestSetDuration_RejectsOverOneDay(t *testing.T) {
	c, _, _ := newController(t)

	require.NoError(t, c.SetDuration(timer.MaxMinutes))
	assert.Equal(t, 86400, c.State().SelectedSeconds)

	assert.ErrorIs(t, c.SetDuration(timer.MaxMinutes+1), timer.ErrInvalidDuration)
	assert.ErrorIs(t, c.SetDuration(math.MaxInt/60+1), timer.ErrInvalidDuration)
	assert.ErrorIs(t, c.SetDuration(math.MaxInt), timer.ErrInvalidDuration)
	assert.Equal(t, timer.State{SelectedSeconds: 86400, RemainingSeconds: 86400}, c.State())
}

func TestWithDefaultMinutes_IgnoresOutOfRange(t *testing.T) {
	c, _, _ := newController(t, timer.WithDefaultMinutes(timer.MaxMinutes+1))
	assert.Equal(t, 900, c.State().SelectedSeconds)
}

func TestSetDuration_IgnoredWhileRunning(t *testing.T) {
	c, _, _ := newController(t)
	require.True(t, c.Start())

	require.NoError(t, c.SetDuration(30))
	assert.Equal(t, 900, c.State().SelectedSeconds)
	assert.Equal(t, 900, c.State().RemainingSeconds)
}

func TestStart_Idempotent(t *testing.T) {
	c, clock, _ := newController(t)

	assert.True(t, c.Start())
	assert.False(t, c.Start())
	assert.Equal(t, 1, clock.Live())

	clock.Advance(3 * time.Second)
	eventuallyState(t, c, timer.State{SelectedSeconds: 900, RemainingSeconds: 897, Running: true})
}

func TestTicks_DecrementRemaining(t *testing.T) {
	c, clock, fired := newController(t)
	require.True(t, c.Start())

	clock.Advance(10 * time.Second)

	eventuallyState(t, c, timer.State{SelectedSeconds: 900, RemainingSeconds: 890, Running: true})
	assert.Zero(t, fired.Load())
}

func TestExpiry_OneMinute(t *testing.T) {
	c, clock, fired := newController(t)
	require.NoError(t, c.SetDuration(1))
	require.True(t, c.Start())

	clock.Advance(60 * time.Second)

	eventuallyState(t, c, timer.State{SelectedSeconds: 60, RemainingSeconds: 0})
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	clock.Advance(5 * time.Second)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, clock.Live())
}

func TestStop_ResetsToSelected(t *testing.T) {
	c, clock, fired := newController(t)
	require.NoError(t, c.SetDuration(25))
	require.True(t, c.Start())

	clock.Advance(2 * time.Second)
	eventuallyState(t, c, timer.State{SelectedSeconds: 1500, RemainingSeconds: 1498, Running: true})

	assert.True(t, c.Stop())
	assert.Equal(t, timer.State{SelectedSeconds: 1500, RemainingSeconds: 1500}, c.State())

	clock.Advance(5 * time.Second)
	assert.Equal(t, timer.State{SelectedSeconds: 1500, RemainingSeconds: 1500}, c.State())
	assert.Zero(t, fired.Load())
}

func TestStop_WhileIdleIsNoop(t *testing.T) {
	c, _, _ := newController(t)

	assert.False(t, c.Stop())
	assert.Equal(t, timer.State{SelectedSeconds: 900, RemainingSeconds: 900}, c.State())
}

func TestStopThenStart_OldLoopDoesNotTick(t *testing.T) {
	c, clock, _ := newController(t)
	require.NoError(t, c.SetDuration(2))

	require.True(t, c.Start())
	require.True(t, c.Stop())
	require.True(t, c.Start())

	clock.Advance(time.Second)
	eventuallyState(t, c, timer.State{SelectedSeconds: 120, RemainingSeconds: 119, Running: true})
	require.Eventually(t, func() bool { return clock.Live() == 1 }, time.Second, time.Millisecond)
}

func TestExtend(t *testing.T) {
	c, clock, _ := newController(t)

	assert.False(t, c.Extend(600), "extend while idle is a no-op")
	assert.Equal(t, 900, c.State().RemainingSeconds)

	require.True(t, c.Start())
	clock.Advance(time.Second)
	eventuallyState(t, c, timer.State{SelectedSeconds: 900, RemainingSeconds: 899, Running: true})

	assert.True(t, c.Extend(600))
	assert.Equal(t, 1499, c.State().RemainingSeconds)
	assert.True(t, c.State().Running)

	assert.True(t, c.Extend(0))
	assert.Equal(t, 2099, c.State().RemainingSeconds)
}

func TestExtend_PostponesExpiry(t *testing.T) {
	c, clock, fired := newController(t)
	require.NoError(t, c.SetDuration(1))
	require.True(t, c.Start())

	clock.Advance(59 * time.Second)
	eventuallyState(t, c, timer.State{SelectedSeconds: 60, RemainingSeconds: 1, Running: true})

	require.True(t, c.Extend(30))
	clock.Advance(30 * time.Second)
	eventuallyState(t, c, timer.State{SelectedSeconds: 60, RemainingSeconds: 1, Running: true})
	assert.Zero(t, fired.Load())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	assert.False(t, c.Running())
}

func TestStart_AfterExpiryRestartsFromSelected(t *testing.T) {
	c, clock, fired := newController(t)
	require.NoError(t, c.SetDuration(1))
	require.True(t, c.Start())
	clock.Advance(60 * time.Second)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	require.True(t, c.Start())
	assert.Equal(t, timer.State{SelectedSeconds: 60, RemainingSeconds: 60, Running: true}, c.State())
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	c, clock, _ := newController(t)
	require.NoError(t, c.SetDuration(1))

	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	assert.Equal(t, timer.State{SelectedSeconds: 60, RemainingSeconds: 60}, <-ch)

	require.True(t, c.Start())
	assert.Equal(t, timer.State{SelectedSeconds: 60, RemainingSeconds: 60, Running: true}, <-ch)

	clock.Advance(time.Second)
	assert.Equal(t, timer.State{SelectedSeconds: 60, RemainingSeconds: 59, Running: true}, <-ch)

	c.Stop()
	assert.Equal(t, timer.State{SelectedSeconds: 60, RemainingSeconds: 60}, <-ch)
}

func TestSubscribe_SlowSubscriberKeepsLatest(t *testing.T) {
	c, _, _ := newController(t)

	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	for minutes := 1; minutes <= 40; minutes++ {
		require.NoError(t, c.SetDuration(minutes))
	}

	var last timer.State
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Equal(t, 40*60, last.SelectedSeconds)
}

func TestClose_CancelsLoopAndClosesSubscribers(t *testing.T) {
	c, clock, fired := newController(t)
	ch, _ := c.Subscribe()
	require.True(t, c.Start())

	c.Close()

	assert.False(t, c.Running())
	assert.Equal(t, 0, clock.Live())
	for range ch {
	}
	assert.False(t, c.Start())
	assert.Zero(t, fired.Load())
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{-3, "00:00"},
		{59, "00:59"},
		{1498, "24:58"},
		{3600, "01:00:00"},
		{5025, "01:23:45"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timer.FormatRemaining(tt.seconds))
	}
}

func TestState_Progress(t *testing.T) {
	assert.Zero(t, timer.State{SelectedSeconds: 60, RemainingSeconds: 60}.Progress())
	assert.InDelta(t, 0.5, timer.State{SelectedSeconds: 60, RemainingSeconds: 30, Running: true}.Progress(), 0.001)
	assert.Zero(t, timer.State{SelectedSeconds: 60, RemainingSeconds: 90, Running: true}.Progress())
}
