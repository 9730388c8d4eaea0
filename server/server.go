//go:build linux
// +build linux

// File: server/server.go
// Package server provides the epoll-driven TCP server: one event loop
// goroutine classifying readiness and a worker pool running the handler.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/control"
	"github.com/momentics/hioload-tcp/internal/concurrency"
	"github.com/momentics/hioload-tcp/internal/transport"
	"github.com/momentics/hioload-tcp/reactor"
)

var ErrAlreadyRunning = errors.New("server already running")

// Server owns the listening socket, the multiplexer and the worker pool.
type Server struct {
	cfg      Config
	log      *zap.Logger
	control  *control.Control
	reactor  reactor.EventReactor
	listener *transport.Listener
	pool     *concurrency.ThreadPool

	running   atomic.Bool
	closing   atomic.Bool
	loopDone  chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New validates cfg, creates the multiplexer and a bound listening socket and
// starts the worker pool. On failure every descriptor created so far is
// released.
func New(cfg Config, opts ...ServerOption) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		log:      zap.NewNop(),
		loopDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.control == nil {
		s.control = control.New(nil)
	}

	r, err := reactor.NewReactor(cfg.MaxEvents)
	if err != nil {
		return nil, api.NewError(api.KindEpollCreation, "failed to create epoll instance", err)
	}
	ln, err := transport.NewListener(cfg.Port)
	if err != nil {
		return nil, multierr.Append(err, r.Close())
	}
	s.reactor = r
	s.listener = ln
	s.pool = concurrency.NewThreadPool(cfg.Workers, s.log.Named("pool"))

	s.control.Metrics().WatchBacklog(s.pool.Pending)
	s.control.RegisterDebugProbe("pool.workers", func() any { return s.pool.NumWorkers() })
	s.control.RegisterDebugProbe("pool.pending", func() any { return s.pool.Pending() })
	s.control.RegisterDebugProbe("server.port", func() any {
		port, _ := s.Port()
		return port
	})
	return s, nil
}

// Port returns the bound port, useful when Config.Port is 0.
func (s *Server) Port() (uint16, error) {
	return s.listener.Port()
}

// Control returns the metrics and debug probe sink.
func (s *Server) Control() *control.Control {
	return s.control
}

// Close stops the event loop, drains the worker pool and releases the
// multiplexer and the listening socket. Connections still open are left to
// the process exit. Safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		if s.running.Load() {
			if err := s.reactor.Wake(); err != nil {
				s.log.Warn("wake event loop", zap.Error(err))
			}
			<-s.loopDone
		}
		s.pool.Close()
		s.closeErr = multierr.Combine(
			s.listener.Close(),
			s.reactor.Close(),
		)
	})
	return s.closeErr
}
