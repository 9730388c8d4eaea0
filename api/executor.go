// Package api
// Author: momentics
//
// Executor contract for deferred handler work.

package api

// Executor runs submitted tasks off the caller's goroutine.
type Executor interface {
	// Submit schedules task for execution without waiting for it.
	Submit(task func()) error

	// NumWorkers returns the number of worker routines.
	NumWorkers() int

	// Pending returns the number of queued, not yet started tasks.
	Pending() int
}
