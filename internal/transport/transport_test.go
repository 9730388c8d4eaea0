//go:build linux

package transport_test

import (
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/internal/transport"
)

// pair returns a server-side Conn and the client net.Conn connected to it.
func pair(t *testing.T) (*transport.Conn, net.Conn) {
	t.Helper()
	ln, err := transport.NewListener(0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	require.NoError(t, ln.Listen())

	port, err := ln.Port()
	require.NoError(t, err)
	require.NotZero(t, port)

	client, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var conn *transport.Conn
	require.Eventually(t, func() bool {
		c, err := ln.Accept()
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 5*time.Millisecond)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, client
}

func TestConn_ReadWritePeer(t *testing.T) {
	conn, client := pair(t)

	peer, err := conn.PeerAddr()
	require.NoError(t, err)
	assert.Equal(t, client.LocalAddr().(*net.TCPAddr).AddrPort().Port(), peer.Port())
	assert.True(t, peer.Addr().Is4())

	_, err = client.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 3)
	var n int
	require.Eventually(t, func() bool {
		n, err = conn.Read(buf)
		return err != unix.EAGAIN
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "hel", string(buf[:n]))

	require.NoError(t, conn.WriteAll([]byte("world")))
	got := make([]byte, 5)
	_, err = io.ReadFull(client, got)
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))
}

func TestConn_ReadEOFAndSpuriousWake(t *testing.T) {
	conn, client := pair(t)

	n, err := conn.Read(make([]byte, 8))
	assert.Equal(t, 0, n)
	assert.Equal(t, unix.EAGAIN, err)

	require.NoError(t, client.(*net.TCPConn).CloseWrite())
	require.Eventually(t, func() bool {
		n, err = conn.Read(make([]byte, 8))
		return err != unix.EAGAIN
	}, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestConn_CloseOnce(t *testing.T) {
	conn, _ := pair(t)

	require.NoError(t, conn.Close())
	assert.True(t, conn.Closed())
	assert.NoError(t, conn.Close())

	_, err := conn.PeerAddr()
	assert.True(t, api.IsKind(err, api.KindPeerAddress))
}

func TestListener_BindConflict(t *testing.T) {
	first, err := transport.NewListener(0)
	require.NoError(t, err)
	defer first.Close()
	require.NoError(t, first.Listen())
	port, err := first.Port()
	require.NoError(t, err)

	// SO_REUSEADDR does not allow two listeners on one port.
	second, err := transport.NewListener(port)
	if err == nil {
		err = second.Listen()
		_ = second.Close()
	}
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindSocketBinding) || api.IsKind(err, api.KindSocketListening))
}
