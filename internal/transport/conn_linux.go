//go:build linux
// +build linux

// File: internal/transport/conn_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Owned handle over an accepted TCP descriptor.

package transport

import (
	"net/netip"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
)

// Conn owns one accepted socket descriptor. The descriptor is closed exactly
// once no matter how many code paths call Close.
type Conn struct {
	fd     int
	closed atomic.Bool
}

// NewConn takes ownership of fd.
func NewConn(fd int) *Conn {
	return &Conn{fd: fd}
}

// Fd returns the raw descriptor. It must not be used after Close.
func (c *Conn) Fd() int {
	return c.fd
}

// Read performs a single non-blocking read into buf. A zero count with a nil
// error means the peer closed its write side. unix.EAGAIN is returned as is
// so the caller can tell a spurious wake-up from a failure.
func (c *Conn) Read(buf []byte) (int, error) {
	for {
		n, _, err := unix.Recvfrom(c.fd, buf, unix.MSG_DONTWAIT)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return 0, err
		}
		if err != nil {
			return 0, api.NewError(api.KindRead, "failed to read from a client", err)
		}
		return n, nil
	}
}

// WriteAll writes the whole of p, retrying short writes.
func (c *Conn) WriteAll(p []byte) error {
	for len(p) > 0 {
		n, err := unix.SendmsgN(c.fd, p, nil, nil, unix.MSG_NOSIGNAL)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return api.NewError(api.KindWrite, "failed to write to a client", err)
		}
		p = p[n:]
	}
	return nil
}

// PeerAddr resolves the remote address. The result is not cached.
func (c *Conn) PeerAddr() (netip.AddrPort, error) {
	sa, err := unix.Getpeername(c.fd)
	if err != nil {
		return netip.AddrPort{}, api.NewError(api.KindPeerAddress, "failed to get client address", err)
	}
	return sockaddrToAddrPort(sa), nil
}

// Close releases the descriptor. Only the first call reaches the kernel.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(c.fd)
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

func sockaddrToAddrPort(sa unix.Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port))
	default:
		return netip.AddrPort{}
	}
}
