//go:build linux
// +build linux

// File: server/run.go
// Package server implements the event loop: readiness wait, classification,
// accept and the single bounded read per event.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"errors"
	"net/netip"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/control"
	"github.com/momentics/hioload-tcp/internal/transport"
	"github.com/momentics/hioload-tcp/reactor"
)

// Run starts listening and runs the event loop on the calling goroutine.
// It returns only on a fatal error (listen, registration of the listening
// socket, multiplexer wait) or, with a KindClosed error, after Close or
// cancellation of ctx.
func (s *Server) Run(ctx context.Context, h api.Handler) error {
	if h == nil {
		return api.NewError(api.KindInvalidConfig, "nil handler", nil)
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.loopDone)
	if s.closing.Load() {
		return api.NewError(api.KindClosed, "server closed", nil)
	}

	if err := s.listener.Listen(); err != nil {
		return err
	}
	if err := s.reactor.Add(s.listener.Fd(), reactor.LevelTriggered); err != nil {
		return api.NewError(api.KindEpollAdd, "failed to add server socket to epoll instance", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	defer wg.Wait()
	defer close(stop)
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			if err := s.reactor.Wake(); err != nil {
				s.log.Warn("wake event loop", zap.Error(err))
			}
		case <-stop:
		}
	}()

	d := &dispatcher{
		handler: h,
		rearm:   s.reactor.Rearm,
		metrics: s.control.Metrics(),
		log:     s.log,
	}
	port, _ := s.Port()
	s.log.Info("event loop started",
		zap.Uint16("port", port),
		zap.Int("workers", s.pool.NumWorkers()),
		zap.Int("max_events", s.cfg.MaxEvents))
	return s.loop(ctx, d)
}

func (s *Server) loop(ctx context.Context, d *dispatcher) error {
	events := make([]reactor.Event, s.cfg.MaxEvents)
	buf := make([]byte, s.cfg.ReadBufferSize)
	lfd := s.listener.Fd()

	for {
		n, err := s.reactor.Wait(events)
		if err != nil {
			return api.NewError(api.KindEpollWait, "failed to wait for events", err)
		}
		stopping := false
		for _, ev := range events[:n] {
			switch {
			case ev.Woken():
				stopping = s.closing.Load() || ctx.Err() != nil
			case ev.Stale():
				continue
			case ev.Fd == lfd:
				s.accept(d)
			default:
				s.read(d, ev.Fd, buf)
			}
		}
		if stopping {
			s.log.Info("event loop stopped")
			return api.NewError(api.KindClosed, "server closed", ctx.Err())
		}
	}
}

// accept takes one pending connection. Failures are logged and skipped.
func (s *Server) accept(d *dispatcher) {
	m := s.control.Metrics()
	conn, err := s.listener.Accept()
	if err != nil {
		if !errors.Is(err, unix.EAGAIN) {
			m.AcceptFailures.Inc()
			s.log.Warn("accept", zap.Error(err))
		}
		return
	}
	// Parked until the worker has run OnNew, so no read can overtake it.
	if err := s.reactor.Add(conn.Fd(), reactor.Parked); err != nil {
		_ = conn.Close()
		m.AcceptFailures.Inc()
		s.log.Warn("register connection",
			zap.Error(api.NewError(api.KindRegistration, "failed to add client socket to epoll instance", err)))
		return
	}
	m.Accepted.Inc()
	s.submit(d, WorkItem{Kind: KindNew, Conn: conn})
}

// read performs exactly one bounded read on a ready connection.
func (s *Server) read(d *dispatcher, fd int, buf []byte) {
	conn := transport.NewConn(fd)
	n, err := conn.Read(buf)
	switch classifyRead(n, err) {
	case readAgain:
		if err := s.reactor.Rearm(fd); err != nil {
			peer := s.teardown(conn, control.ReasonFailure)
			s.submit(d, WorkItem{Kind: KindError, Peer: peer,
				Err: api.NewError(api.KindRegistration, "failed to re-arm connection", err)})
		}
	case readError:
		peer := s.teardown(conn, control.ReasonReadError)
		s.submit(d, WorkItem{Kind: KindError, Peer: peer, Err: err})
	case readEOF:
		peer := s.teardown(conn, control.ReasonPeer)
		s.submit(d, WorkItem{Kind: KindClose, Peer: peer})
	default:
		data := make([]byte, n)
		copy(data, buf[:n])
		s.submit(d, WorkItem{Kind: KindRead, Conn: conn, Data: data})
	}
}

// teardown closes conn on the loop goroutine. The peer address is resolved
// first on a best-effort basis: a failure yields the zero address and is
// otherwise ignored, since the connection is going away regardless.
func (s *Server) teardown(conn *transport.Conn, reason string) netip.AddrPort {
	peer, _ := conn.PeerAddr()
	if err := conn.Close(); err != nil {
		s.log.Warn("close failed", zap.Int("fd", conn.Fd()), zap.Error(err))
	}
	s.control.Metrics().Closed.WithLabelValues(reason).Inc()
	return peer
}

func (s *Server) submit(d *dispatcher, item WorkItem) {
	if err := s.pool.Push(func() { d.dispatch(item) }); err != nil {
		if item.Conn != nil {
			_ = item.Conn.Close()
		}
		s.log.Warn("drop work item", zap.Stringer("kind", item.Kind), zap.Error(err))
		return
	}
	s.control.Metrics().Events.WithLabelValues(item.Kind.String()).Inc()
}
