// File: internal/concurrency/executor.go
// Package concurrency implements the worker pool that runs handler work.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks to a fixed set of worker goroutines draining one
// shared FIFO. The FIFO is unbounded: Submit never blocks, and a handler that
// is slower than the arrival rate grows the backlog without limit.

package concurrency

import (
	"runtime"
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/momentics/hioload-tcp/api"
)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

// Executor manages a fixed pool of worker goroutines.
type Executor struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  *queue.Queue // of TaskFunc, guarded by mu
	closed bool         // guarded by mu

	wg         sync.WaitGroup
	numWorkers int
	log        *zap.Logger

	// statistics
	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panics         atomic.Int64
}

// NewExecutor starts numWorkers goroutines. If numWorkers <= 0, defaults to
// runtime.NumCPU(). A nil logger disables logging.
func NewExecutor(numWorkers int, log *zap.Logger) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Executor{
		tasks:      queue.New(),
		numWorkers: numWorkers,
		log:        log,
	}
	e.cond = sync.NewCond(&e.mu)
	e.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go e.worker(i)
	}
	return e
}

// Submit enqueues a task for execution, returning ErrExecutorClosed if the
// executor is closed.
func (e *Executor) Submit(task func()) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return api.ErrExecutorClosed
	}
	e.tasks.Add(TaskFunc(task))
	e.totalTasks.Inc()
	e.mu.Unlock()
	e.cond.Signal()
	return nil
}

// NumWorkers returns the number of workers.
func (e *Executor) NumWorkers() int {
	return e.numWorkers
}

// Pending returns the number of queued tasks no worker has picked up yet.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Length()
}

// Close stops accepting tasks, lets workers drain the queue and waits for
// them to exit. Safe to call more than once.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()
	e.cond.Broadcast()
	e.wg.Wait()
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total := e.totalTasks.Load()
	completed := e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": completed,
		"pending_tasks":   total - completed,
		"panics":          e.panics.Load(),
		"num_workers":     int64(e.numWorkers),
	}
}

// next blocks until a task is available. ok is false once the executor is
// closed and the queue is empty.
func (e *Executor) next() (task TaskFunc, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.tasks.Length() == 0 {
		if e.closed {
			return nil, false
		}
		e.cond.Wait()
	}
	return e.tasks.Remove().(TaskFunc), true
}

func (e *Executor) worker(id int) {
	defer e.wg.Done()
	for {
		task, ok := e.next()
		if !ok {
			return
		}
		e.executeTask(id, task)
	}
}

// executeTask runs the task and updates statistics, recovering from panics.
func (e *Executor) executeTask(id int, task TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			e.panics.Inc()
			e.log.Error("task panicked", zap.Int("worker", id), zap.Any("panic", r))
		}
		e.completedTasks.Inc()
	}()
	task()
}

var _ api.Executor = (*Executor)(nil)
