package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand_WeaklyTyped(t *testing.T) {
	cmd, err := DecodeCommand(map[string]any{
		"action":  " Start ",
		"minutes": "25",
	})
	require.NoError(t, err)
	assert.Equal(t, Command{Action: ActionStart, Minutes: 25}, cmd)

	cmd, err = DecodeCommand(map[string]any{"action": "duration", "minutes": 40.0})
	require.NoError(t, err)
	assert.Equal(t, 40, cmd.Minutes)
}

func TestDecodeCommand_Errors(t *testing.T) {
	_, err := DecodeCommand(map[string]any{"minutes": 5})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = DecodeCommand(map[string]any{"action": "start", "minutes": "soon"})
	assert.Error(t, err)

	_, err = ParseCommand([]byte("not json"))
	assert.Error(t, err)
}
