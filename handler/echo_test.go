package handler

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEcho_Callbacks(t *testing.T) {
	e := NewEcho(nil)
	peer := netip.MustParseAddrPort("127.0.0.1:4242")

	out, keep := e.OnNew(peer)
	assert.Empty(t, out)
	assert.True(t, keep)

	out, keep = e.OnRead(peer, []byte("hi"))
	assert.Equal(t, []byte("hi"), out)
	assert.True(t, keep)

	e.OnError(peer, errors.New("reset"))
	e.OnClose(peer)

	assert.Equal(t, map[string]int64{
		"opened":       1,
		"closed":       1,
		"failed":       1,
		"echoed_bytes": 2,
	}, e.Stats())
}
