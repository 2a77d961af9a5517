package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if !NewExec(0).Available("sh") {
		t.Skip("sh not available")
	}
}

func TestExec_Run(t *testing.T) {
	requireShell(t)
	r := NewExec(time.Second)

	require.NoError(t, r.Run(context.Background(), []string{"sh", "-c", "exit 0"}))

	err := r.Run(context.Background(), []string{"sh", "-c", "echo nope >&2; exit 3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestExec_RunTimeout(t *testing.T) {
	requireShell(t)
	r := NewExec(50 * time.Millisecond)

	start := time.Now()
	err := r.Run(context.Background(), []string{"sh", "-c", "exec sleep 5"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExec_EmptyCommand(t *testing.T) {
	r := NewExec(0)
	assert.ErrorIs(t, r.Run(context.Background(), nil), ErrEmptyCommand)
	assert.False(t, r.Available(""))
}
