// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker pool for hioload-tcp. A fixed set of goroutines drains one shared,
// unbounded FIFO of deferred handler work. There is no priority and no
// per-key ordering; callers that need ordering for a key must not submit the
// next item for it until the previous one has finished.
package concurrency
