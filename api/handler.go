// File: api/handler.go
// Package api defines Handler interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "net/netip"

// Handler receives connection lifecycle callbacks from the server.
//
// A single Handler value is shared by every worker, so implementations must
// be safe for concurrent use or serialize internally.
type Handler interface {
	// OnNew is called once for an accepted connection. The returned bytes are
	// written to the peer; keepAlive=false closes the connection afterwards.
	OnNew(peer netip.AddrPort) (out []byte, keepAlive bool)

	// OnRead is called with the bytes of one read. Same output contract as OnNew.
	OnRead(peer netip.AddrPort, in []byte) (out []byte, keepAlive bool)

	// OnError reports a per-connection failure. The connection is already closed.
	OnError(peer netip.AddrPort, err error)

	// OnClose reports an orderly shutdown by the peer.
	OnClose(peer netip.AddrPort)
}
