//go:build !linux
// +build !linux

package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/control"
)

// Server is unavailable on this platform; New always fails.
type Server struct {
	log     *zap.Logger
	control *control.Control
}

func New(cfg Config, opts ...ServerOption) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("server: %w", api.ErrNotSupported)
}

func (s *Server) Run(ctx context.Context, h api.Handler) error { return api.ErrNotSupported }
func (s *Server) Port() (uint16, error)                          { return 0, api.ErrNotSupported }
func (s *Server) Control() *control.Control                      { return s.control }
func (s *Server) Close() error                                   { return nil }
