// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-tcp/control"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(log *zap.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithControl sets the metrics and debug probe sink.
func WithControl(ctrl *control.Control) ServerOption {
	return func(s *Server) {
		if ctrl != nil {
			s.control = ctrl
		}
	}
}
