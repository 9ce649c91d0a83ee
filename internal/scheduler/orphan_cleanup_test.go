package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEnqueuer struct {
	calls atomic.Int32
	err   error
}

func (e *countingEnqueuer) EnqueueOrphanCleanup() (string, error) {
	e.calls.Add(1)
	if e.err != nil {
		return "", e.err
	}
	return "task-1", nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("every day"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"), "seconds field is not accepted")
}

func TestOrphanCleanupScheduler_StartStop(t *testing.T) {
	s := NewOrphanCleanupScheduler(&countingEnqueuer{}, "0 3 * * *")

	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")
	assert.True(t, s.IsRunning())

	next := s.NextRun()
	assert.False(t, next.IsZero())
	assert.Equal(t, 3, next.Hour())
	assert.True(t, next.After(time.Now()))

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero())
}

func TestOrphanCleanupScheduler_InvalidSchedule(t *testing.T) {
	s := NewOrphanCleanupScheduler(&countingEnqueuer{}, "not a schedule")

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestOrphanCleanupScheduler_StopsWithContext(t *testing.T) {
	s := NewOrphanCleanupScheduler(&countingEnqueuer{}, "0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestOrphanCleanupScheduler_RunNow(t *testing.T) {
	enq := &countingEnqueuer{}
	s := NewOrphanCleanupScheduler(enq, "0 3 * * *")

	id, err := s.RunNow()
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)
	assert.Equal(t, int32(1), enq.calls.Load())

	enq.err = errors.New("queue closed")
	_, err = s.RunNow()
	assert.Error(t, err)
}
