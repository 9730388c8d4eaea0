// File: handler/echo.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Echo handler: replies with every byte it receives and keeps the
// connection open.

package handler

import (
	"net/netip"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/momentics/hioload-tcp/api"
)

// Echo implements api.Handler. It is safe for concurrent use.
type Echo struct {
	log *zap.Logger

	opened atomic.Int64
	closed atomic.Int64
	failed atomic.Int64
	echoed atomic.Int64 // bytes
}

// NewEcho returns an echo handler logging to log. A nil logger is silent.
func NewEcho(log *zap.Logger) *Echo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Echo{log: log}
}

func (e *Echo) OnNew(peer netip.AddrPort) ([]byte, bool) {
	e.opened.Inc()
	e.log.Info("new connection", zap.Stringer("peer", peer))
	return nil, true
}

func (e *Echo) OnRead(peer netip.AddrPort, in []byte) ([]byte, bool) {
	e.echoed.Add(int64(len(in)))
	e.log.Debug("echo", zap.Stringer("peer", peer), zap.Int("bytes", len(in)))
	return in, true
}

func (e *Echo) OnError(peer netip.AddrPort, err error) {
	e.failed.Inc()
	e.log.Warn("connection error", zap.Stringer("peer", peer), zap.Error(err))
}

func (e *Echo) OnClose(peer netip.AddrPort) {
	e.closed.Inc()
	e.log.Info("connection closed", zap.Stringer("peer", peer))
}

// Stats reports lifetime counters.
func (e *Echo) Stats() map[string]int64 {
	return map[string]int64{
		"opened":       e.opened.Load(),
		"closed":       e.closed.Load(),
		"failed":       e.failed.Load(),
		"echoed_bytes": e.echoed.Load(),
	}
}

var _ api.Handler = (*Echo)(nil)
