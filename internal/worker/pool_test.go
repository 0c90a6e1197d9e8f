package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

func TestWorkerPool_RunsSubmittedJobs(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start(context.Background())

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) error {
			done.Add(1)
			return nil
		}))
	}
	pool.Stop()

	require.Equal(t, int32(5), done.Load())
}

func TestWorkerPool_TrySubmitReportsFullQueue(t *testing.T) {
	pool := NewWorkerPool(1)

	// not started: the buffer holds two jobs
	noop := func(context.Context) error { return nil }
	require.NoError(t, pool.TrySubmit(noop))
	require.NoError(t, pool.TrySubmit(noop))
	require.ErrorIs(t, pool.TrySubmit(noop), errors.ErrQueueFull)
}

func TestWorkerPool_SubmitHonoursContext(t *testing.T) {
	pool := NewWorkerPool(1)
	noop := func(context.Context) error { return nil }
	require.NoError(t, pool.TrySubmit(noop))
	require.NoError(t, pool.TrySubmit(noop))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, pool.Submit(ctx, noop), context.DeadlineExceeded)
}

func TestWorkerPool_SurvivesPanickingJob(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start(context.Background())

	var ran atomic.Bool
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) error { panic("boom") }))
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) error {
		ran.Store(true)
		return nil
	}))
	pool.Stop()

	require.True(t, ran.Load())
}
