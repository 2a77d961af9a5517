package devicelock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepat/internal/logging"
	"sleepat/internal/process/processtest"
	"sleepat/internal/store"
)

func newManager(t *testing.T) (*Manager, *processtest.Fake) {
	t.Helper()
	repo, err := store.Open(filepath.Join(t.TempDir(), "sleepat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	runner := processtest.NewFake()
	runner.SetAvailable("loginctl", true)
	return NewManager(repo, runner, []string{"loginctl", "lock-session"}, logging.NewNop()), runner
}

func TestIsActive_RequiresGrant(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	assert.False(t, m.IsActive(ctx))

	require.NoError(t, m.RequestPermission(ctx))
	assert.True(t, m.Granted(ctx))
	assert.True(t, m.IsActive(ctx))

	require.NoError(t, m.Revoke(ctx))
	assert.False(t, m.IsActive(ctx))
}

func TestIsActive_RequiresCommand(t *testing.T) {
	ctx := context.Background()
	m, runner := newManager(t)
	require.NoError(t, m.RequestPermission(ctx))

	runner.SetAvailable("loginctl", false)
	assert.True(t, m.Granted(ctx))
	assert.False(t, m.IsActive(ctx))
}

func TestLockScreen_NoopWithoutPermission(t *testing.T) {
	m, runner := newManager(t)

	require.NoError(t, m.LockScreen(context.Background()))
	assert.Empty(t, runner.Calls())
}

func TestLockScreen_RunsCommand(t *testing.T) {
	ctx := context.Background()
	m, runner := newManager(t)
	require.NoError(t, m.RequestPermission(ctx))

	require.NoError(t, m.LockScreen(ctx))
	assert.Equal(t, []string{"loginctl lock-session"}, runner.CommandLines())
}

func TestLockScreen_WrapsFailure(t *testing.T) {
	ctx := context.Background()
	m, runner := newManager(t)
	require.NoError(t, m.RequestPermission(ctx))
	boom := errors.New("no session")
	runner.FailWith("loginctl", boom)

	assert.ErrorIs(t, m.LockScreen(ctx), boom)
}
