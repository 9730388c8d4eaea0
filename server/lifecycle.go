// File: server/lifecycle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection lifecycle: the work items the event loop produces and the state
// machine a worker runs for each of them.

package server

import (
	"errors"
	"net/netip"
	"syscall"

	"go.uber.org/zap"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/control"
)

// Kind tags a work item.
type Kind uint8

const (
	KindNew Kind = iota + 1
	KindRead
	KindError
	KindClose
)

func (k Kind) String() string {
	switch k {
	case KindNew:
		return control.EventNew
	case KindRead:
		return control.EventRead
	case KindError:
		return control.EventError
	case KindClose:
		return control.EventClose
	default:
		return "unknown"
	}
}

// connection is the part of an owned descriptor a worker needs.
type connection interface {
	Fd() int
	PeerAddr() (netip.AddrPort, error)
	WriteAll(p []byte) error
	Close() error
}

// WorkItem is a self-contained unit of handler work. New and Read items own
// Conn until the worker closes or re-arms it; Error and Close items refer to
// a descriptor the loop has already closed and carry only the peer address.
type WorkItem struct {
	Kind Kind
	Conn connection
	Peer netip.AddrPort
	Data []byte
	Err  error
}

// readOutcome classifies the result of the single bounded read.
type readOutcome uint8

const (
	readData readOutcome = iota
	readEOF
	readError
	// readAgain is a spurious wake-up: nothing to read yet.
	readAgain
)

func classifyRead(n int, err error) readOutcome {
	switch {
	case errors.Is(err, syscall.EAGAIN):
		return readAgain
	case err != nil || n < 0:
		return readError
	case n == 0:
		return readEOF
	default:
		return readData
	}
}

// dispatcher runs work items against the handler on worker goroutines.
type dispatcher struct {
	handler api.Handler
	rearm   func(fd int) error
	metrics *control.Metrics
	log     *zap.Logger
}

func (d *dispatcher) dispatch(item WorkItem) {
	switch item.Kind {
	case KindNew, KindRead:
		d.serve(item)
	case KindError:
		d.handler.OnError(item.Peer, item.Err)
	case KindClose:
		d.handler.OnClose(item.Peer)
	}
}

// serve runs OnNew/OnRead, writes the reply and then either closes the
// connection or arms it for the next read. Every exit path settles the
// descriptor exactly once.
func (d *dispatcher) serve(item WorkItem) {
	conn := item.Conn
	settled := false
	defer func() {
		// handler panicked: release the descriptor, the executor logs the panic
		if !settled {
			d.close(conn, control.ReasonFailure)
		}
	}()

	peer, err := conn.PeerAddr()
	if err != nil {
		settled = true
		d.close(conn, control.ReasonFailure)
		d.handler.OnError(peer, err)
		return
	}

	var (
		out       []byte
		keepAlive bool
	)
	if item.Kind == KindNew {
		out, keepAlive = d.handler.OnNew(peer)
	} else {
		out, keepAlive = d.handler.OnRead(peer, item.Data)
	}

	if err := conn.WriteAll(out); err != nil {
		settled = true
		d.close(conn, control.ReasonFailure)
		d.handler.OnError(peer, err)
		return
	}
	if !keepAlive {
		settled = true
		d.close(conn, control.ReasonHandler)
		return
	}
	fd := conn.Fd()
	if err := d.rearm(fd); err != nil {
		settled = true
		d.close(conn, control.ReasonFailure)
		d.handler.OnError(peer, api.NewError(api.KindRegistration, "failed to re-arm connection", err))
		return
	}
	settled = true
	d.log.Debug("connection kept alive", zap.Int("fd", fd), zap.Stringer("peer", peer))
}

func (d *dispatcher) close(conn connection, reason string) {
	if err := conn.Close(); err != nil {
		d.log.Warn("close failed", zap.Int("fd", conn.Fd()), zap.Error(err))
	}
	d.metrics.Closed.WithLabelValues(reason).Inc()
}
