package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-tcp/api"
)

func TestExecutor_RunsAllTasks(t *testing.T) {
	e := NewExecutor(4, nil)
	defer e.Close()

	const tasks = 10000
	var wg sync.WaitGroup
	var sum int64
	wg.Add(tasks)
	for i := 1; i <= tasks; i++ {
		v := int64(i)
		require.NoError(t, e.Submit(func() {
			atomic.AddInt64(&sum, v)
			wg.Done()
		}))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout, pending=%d", e.Pending())
	}
	assert.Equal(t, int64(tasks*(tasks+1)/2), atomic.LoadInt64(&sum))
}

func TestExecutor_DefaultWorkerCount(t *testing.T) {
	e := NewExecutor(0, nil)
	defer e.Close()
	assert.Greater(t, e.NumWorkers(), 0)
}

func TestExecutor_WorkersRunInParallel(t *testing.T) {
	e := NewExecutor(3, nil)
	defer e.Close()

	var started sync.WaitGroup
	started.Add(3)
	release := make(chan struct{})
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Submit(func() {
			started.Done()
			<-release
		}))
	}

	ok := make(chan struct{})
	go func() {
		started.Wait()
		close(ok)
	}()
	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("three tasks did not run concurrently on three workers")
	}
	close(release)
}

// The queue has no bound: with every worker stalled, Submit keeps accepting
// work and the backlog grows. This is an accepted limit of the pool, not a
// bug; a slow handler costs memory, never a blocked reactor.
func TestExecutor_UnboundedQueueNeverBlocksSubmit(t *testing.T) {
	e := NewExecutor(1, nil)

	release := make(chan struct{})
	require.NoError(t, e.Submit(func() { <-release }))

	const backlog = 50000
	submitted := make(chan struct{})
	go func() {
		for i := 0; i < backlog; i++ {
			_ = e.Submit(func() {})
		}
		close(submitted)
	}()
	select {
	case <-submitted:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit blocked while the worker was stalled")
	}
	assert.GreaterOrEqual(t, e.Pending(), backlog)

	close(release)
	e.Close()
	assert.Equal(t, 0, e.Pending())
	stats := e.Stats()
	assert.Equal(t, int64(backlog+1), stats["completed_tasks"])
	assert.Equal(t, int64(0), stats["pending_tasks"])
}

func TestExecutor_SurvivesPanics(t *testing.T) {
	e := NewExecutor(1, nil)
	defer e.Close()

	require.NoError(t, e.Submit(func() { panic("boom") }))
	ran := make(chan struct{})
	require.NoError(t, e.Submit(func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
	assert.Equal(t, int64(1), e.Stats()["panics"])
}

func TestExecutor_CloseDrainsAndRejects(t *testing.T) {
	e := NewExecutor(2, nil)
	var ran int64
	for i := 0; i < 100; i++ {
		require.NoError(t, e.Submit(func() { atomic.AddInt64(&ran, 1) }))
	}
	e.Close()
	e.Close()

	assert.Equal(t, int64(100), atomic.LoadInt64(&ran))
	assert.ErrorIs(t, e.Submit(func() {}), api.ErrExecutorClosed)
}

func TestThreadPool_Push(t *testing.T) {
	tp := NewThreadPool(2, nil)
	defer tp.Close()

	done := make(chan struct{})
	require.NoError(t, tp.Push(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pushed task never ran")
	}
	assert.Equal(t, 2, tp.NumWorkers())
}
