// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadPool wraps Executor with the push-style API the reactor uses.

package concurrency

import "go.uber.org/zap"

type ThreadPool struct {
	executor *Executor
}

func NewThreadPool(size int, log *zap.Logger) *ThreadPool {
	return &ThreadPool{
		executor: NewExecutor(size, log),
	}
}

// Push enqueues f and returns without waiting for it to run.
func (tp *ThreadPool) Push(f func()) error {
	return tp.executor.Submit(f)
}

func (tp *ThreadPool) Pending() int {
	return tp.executor.Pending()
}

func (tp *ThreadPool) NumWorkers() int {
	return tp.executor.NumWorkers()
}

func (tp *ThreadPool) Stats() map[string]int64 {
	return tp.executor.Stats()
}

func (tp *ThreadPool) Close() {
	tp.executor.Close()
}
