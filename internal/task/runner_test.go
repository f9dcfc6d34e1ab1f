package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunsAndDrains(t *testing.T) {
	r := NewRunner(2, 10, 1, time.Millisecond)
	r.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Schedule("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, int32(5), ran.Load())
}

func TestRunner_Retries(t *testing.T) {
	r := NewRunner(1, 1, 3, time.Millisecond)
	r.Start(context.Background())

	var attempts atomic.Int32
	require.NoError(t, r.Schedule("flaky", func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("not yet")
		}
		return nil
	}))

	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRunner_PermanentErrorNotRetried(t *testing.T) {
	r := NewRunner(1, 1, 5, time.Millisecond)
	r.Start(context.Background())

	var attempts atomic.Int32
	require.NoError(t, r.Schedule("broken", func(ctx context.Context) error {
		attempts.Add(1)
		return Permanent(errors.New("bad input"))
	}))

	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestRunner_StopCancelsOnTimeout(t *testing.T) {
	r := NewRunner(1, 1, 1, time.Millisecond)
	r.Start(context.Background())

	started := make(chan struct{})
	require.NoError(t, r.Schedule("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Stop(ctx), context.DeadlineExceeded)
}

func TestRunner_ScheduleAfterStop(t *testing.T) {
	r := NewRunner(1, 1, 1, time.Millisecond)
	r.Start(context.Background())
	require.NoError(t, r.Stop(context.Background()))

	err := r.Schedule("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestRunner_QueueFull(t *testing.T) {
	r := NewRunner(1, 1, 1, time.Millisecond)
	// not started: nothing drains the queue
	require.NoError(t, r.Schedule("a", func(ctx context.Context) error { return nil }))
	assert.ErrorIs(t, r.Schedule("b", func(ctx context.Context) error { return nil }), ErrQueueFull)
}

func TestIsPermanent(t *testing.T) {
	base := errors.New("x")
	assert.True(t, IsPermanent(Permanent(base)))
	assert.ErrorIs(t, Permanent(base), base)
	assert.False(t, IsPermanent(base))
	assert.Nil(t, Permanent(nil))
}
