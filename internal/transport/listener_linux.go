//go:build linux
// +build linux

// File: internal/transport/listener_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// IPv4 listening socket built directly on socket(2)/bind(2)/listen(2).

package transport

import (
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
)

// Listener is a non-blocking IPv4 TCP listening socket.
type Listener struct {
	fd     int
	closed atomic.Bool
}

// NewListener creates a socket with SO_REUSEADDR and binds it to
// INADDR_ANY:port. It does not start listening. Port 0 picks an ephemeral
// port, see Port.
func NewListener(port uint16) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, api.NewError(api.KindSocketCreation, "failed to create server socket", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, api.NewError(api.KindSocketCreation, "failed to set socket options", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: int(port)}); err != nil {
		_ = unix.Close(fd)
		return nil, api.NewError(api.KindSocketBinding, "failed to bind server socket", err)
	}
	return &Listener{fd: fd}, nil
}

// Fd returns the listening descriptor.
func (l *Listener) Fd() int {
	return l.fd
}

// Listen marks the socket passive.
func (l *Listener) Listen() error {
	if err := unix.Listen(l.fd, unix.SOMAXCONN); err != nil {
		return api.NewError(api.KindSocketListening, "failed to listen on server socket", err)
	}
	return nil
}

// Accept takes one pending connection. The returned Conn is in blocking mode
// so writes from workers complete fully.
func (l *Listener) Accept() (*Conn, error) {
	for {
		nfd, _, err := unix.Accept4(l.fd, unix.SOCK_CLOEXEC)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, api.NewError(api.KindAccept, "failed to accept a connection", err)
		}
		return NewConn(nfd), nil
	}
}

// Port returns the locally bound port.
func (l *Listener) Port() (uint16, error) {
	sa, err := unix.Getsockname(l.fd)
	if err != nil {
		return 0, api.NewError(api.KindSocketBinding, "failed to get server address", err)
	}
	return sockaddrToAddrPort(sa).Port(), nil
}

// Close releases the descriptor once.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(l.fd)
}
