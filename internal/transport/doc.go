// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw socket primitives for the dispatch core: a non-blocking IPv4 listening
// socket and an owning handle over each accepted descriptor. All calls go
// straight to the kernel through golang.org/x/sys/unix; nothing here touches
// the Go runtime netpoller. Linux only.

package transport
