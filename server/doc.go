// Package server implements the connection dispatch core of hioload-tcp.
//
// One goroutine runs the event loop: it waits on epoll, accepts new
// connections, performs a single bounded read per readiness event and closes
// descriptors on read error or end of stream. Every outcome is packaged as a
// WorkItem and pushed to a fixed worker pool, where the api.Handler runs and
// its reply is written back.
//
// Connections are registered one-shot. A descriptor is re-armed only after
// the worker handling its previous event has written the reply, so at most
// one goroutine works on a descriptor at a time, OnNew always precedes
// OnRead, and nothing touches a descriptor after its OnError or OnClose.
//
// The worker queue is unbounded. A handler slower than the event rate grows
// memory rather than stalling the loop.
package server
