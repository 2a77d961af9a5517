package status

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepat/internal/logging"
	"sleepat/internal/process/processtest"
)

func notice() Notice {
	return Notice{
		Title:            "Sleep timer",
		Body:             "Time left: 24:58",
		RemainingSeconds: 1498,
		Actions: []ActionLabel{
			{Action: ActionStop, Label: "Stop"},
			{Action: ActionExtend, Label: "+10 min"},
		},
	}
}

func TestBoard_ShowAndClear(t *testing.T) {
	ctx := context.Background()
	b := NewBoard()

	_, ok := b.Current()
	assert.False(t, ok)
	assert.False(t, b.HasAction(ActionStop))

	require.NoError(t, b.Show(ctx, notice()))
	n, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, 1498, n.RemainingSeconds)
	assert.False(t, n.UpdatedAt.IsZero())
	assert.True(t, b.HasAction(ActionExtend))
	assert.False(t, b.HasAction("snooze"))

	require.NoError(t, b.Clear(ctx))
	_, ok = b.Current()
	assert.False(t, ok)
}

func TestDesktop_ShowUsesSynchronousHint(t *testing.T) {
	runner := processtest.NewFake()
	d := NewDesktop(runner, "", logging.NewNop())

	require.NoError(t, d.Show(context.Background(), notice()))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "notify-send", calls[0][0])
	assert.Contains(t, calls[0], "--hint="+syncHint)
	assert.Equal(t, "Sleep timer", calls[0][len(calls[0])-2])
	assert.Equal(t, "Time left: 24:58\nStop · +10 min", calls[0][len(calls[0])-1])
}

func TestDesktop_ClearOnlyAfterShow(t *testing.T) {
	ctx := context.Background()
	runner := processtest.NewFake()
	d := NewDesktop(runner, "notify-send", logging.NewNop())

	require.NoError(t, d.Clear(ctx))
	assert.Empty(t, runner.Calls())

	require.NoError(t, d.Show(ctx, notice()))
	require.NoError(t, d.Clear(ctx))
	require.NoError(t, d.Clear(ctx))

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "--expire-time=1")
}

func TestDesktop_WrapsFailure(t *testing.T) {
	runner := processtest.NewFake()
	boom := errors.New("no bus")
	runner.FailWith("notify-send", boom)
	d := NewDesktop(runner, "notify-send", logging.NewNop())

	err := d.Show(context.Background(), notice())
	assert.ErrorIs(t, err, boom)
}

type failingDisplay struct{ err error }

func (f failingDisplay) Show(context.Context, Notice) error { return f.err }
func (f failingDisplay) Clear(context.Context) error        { return f.err }

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	ctx := context.Background()
	board := NewBoard()
	boom := errors.New("boom")
	m := Multi{failingDisplay{err: boom}, board}

	err := m.Show(ctx, notice())
	assert.ErrorIs(t, err, boom)
	_, ok := board.Current()
	assert.True(t, ok, "later displays still receive the notice")

	err = m.Clear(ctx)
	assert.ErrorIs(t, err, boom)
	_, ok = board.Current()
	assert.False(t, ok)
}
