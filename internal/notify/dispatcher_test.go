package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsDetachedFromCaller(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	var sawLiveCtx atomic.Bool
	d.Go(ctx, "task", func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		sawLiveCtx.Store(ctx.Err() == nil)
		return nil
	})
	cancel()

	require.NoError(t, d.Wait(context.Background()))
	assert.True(t, sawLiveCtx.Load())
}

func TestDispatcher_FailuresAndPanicsAreContained(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(time.Second)

	var ran atomic.Int32
	d.Go(context.Background(), "fails", func(context.Context) error {
		ran.Add(1)
		return errors.New("boom")
	})
	d.Go(context.Background(), "panics", func(context.Context) error {
		ran.Add(1)
		panic("kaboom")
	})

	require.NoError(t, d.Wait(context.Background()))
	assert.Equal(t, int32(2), ran.Load())
}

func TestDispatcher_TimeoutApplies(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(10 * time.Millisecond)

	var err atomic.Value
	d.Go(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		err.Store(ctx.Err())
		return ctx.Err()
	})

	require.NoError(t, d.Wait(context.Background()))
	assert.ErrorIs(t, err.Load().(error), context.DeadlineExceeded)
}

func TestDispatcher_WaitHonoursContext(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(time.Second)

	release := make(chan struct{})
	d.Go(context.Background(), "blocked", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, d.Wait(context.Background()))
}
