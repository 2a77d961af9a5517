package expiry

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleepat/internal/logging"
	"sleepat/internal/metrics"
)

func TestFire_PausesThenLocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	media := NewMockMediaPauser(ctrl)
	lock := NewMockScreenLocker(ctrl)

	gomock.InOrder(
		media.EXPECT().Pause(gomock.Any()).Return(nil),
		lock.EXPECT().LockScreen(gomock.Any()).Return(nil),
	)

	e := New(media, lock, true, nil, logging.NewNop())
	require.NoError(t, e.Fire(context.Background()))
}

func TestFire_LockDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	media := NewMockMediaPauser(ctrl)
	lock := NewMockScreenLocker(ctrl)

	media.EXPECT().Pause(gomock.Any()).Return(nil)
	lock.EXPECT().LockScreen(gomock.Any()).Times(0)

	e := New(media, lock, false, nil, logging.NewNop())
	require.NoError(t, e.Fire(context.Background()))
}

func TestFire_MediaFailureStillLocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	media := NewMockMediaPauser(ctrl)
	lock := NewMockScreenLocker(ctrl)
	boom := errors.New("no players found")

	media.EXPECT().Pause(gomock.Any()).Return(boom)
	lock.EXPECT().LockScreen(gomock.Any()).Return(nil)

	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	e := New(media, lock, true, rec, logging.NewNop())

	err := e.Fire(context.Background())
	assert.ErrorIs(t, err, boom)

	count, err := testutil.GatherAndCount(reg, "sleepat_expiry_effect_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFire_JoinsBothFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	media := NewMockMediaPauser(ctrl)
	lock := NewMockScreenLocker(ctrl)
	mediaErr := errors.New("media")
	lockErr := errors.New("lock")

	media.EXPECT().Pause(gomock.Any()).Return(mediaErr)
	lock.EXPECT().LockScreen(gomock.Any()).Return(lockErr)

	err := New(media, lock, true, metrics.Nop{}, logging.NewNop()).Fire(context.Background())
	assert.ErrorIs(t, err, mediaErr)
	assert.ErrorIs(t, err, lockErr)
}
