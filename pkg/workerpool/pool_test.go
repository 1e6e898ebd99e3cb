package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vyapar/pkg/workerpool"
)

func TestPoolRunsEverySubmittedTask(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, n, count.Load())
}

func TestPoolFullBackpressure(t *testing.T) {
	// Size-1 pool whose only worker is blocked; queue holds 2.
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, pool.SubmitWait(func() {
		close(started)
		<-blocker
	}))
	<-started

	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	err := pool.Submit(func() {})
	assert.ErrorIs(t, err, workerpool.ErrPoolFull)

	close(blocker)
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	err := pool.Submit(func() {})
	assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.SubmitWait(func() {
		defer wg.Done()
		panic("boom")
	}))
	wg.Wait()

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died on panic; subsequent task never ran")
	}
}

func TestPoolShutdownDrainsInFlightTasks(t *testing.T) {
	pool := workerpool.New(10)

	var count atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.SubmitWait(func() {
			time.Sleep(time.Millisecond)
			count.Add(1)
		}))
	}

	pool.Shutdown()
	assert.EqualValues(t, 50, count.Load())
}
