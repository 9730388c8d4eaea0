// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for the TCP dispatch core.
//
// Provides:
//   - Prometheus counters for accepts, dispatched work items and closes
//   - A backlog gauge fed by the worker pool
//   - Named debug probes with a flattened Stats snapshot
package control
