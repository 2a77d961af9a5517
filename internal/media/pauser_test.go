package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepat/internal/logging"
	"sleepat/internal/process/processtest"
)

func TestPause_RunsConfiguredCommand(t *testing.T) {
	runner := processtest.NewFake()
	p := NewPauser(runner, []string{"playerctl", "--all-players", "pause"}, logging.NewNop())

	require.NoError(t, p.Pause(context.Background()))
	assert.Equal(t, []string{"playerctl --all-players pause"}, runner.CommandLines())
}

func TestPause_WrapsFailure(t *testing.T) {
	runner := processtest.NewFake()
	boom := errors.New("no players found")
	runner.FailWith("playerctl", boom)
	p := NewPauser(runner, []string{"playerctl", "pause"}, logging.NewNop())

	err := p.Pause(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pause media")
}
