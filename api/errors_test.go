package api_test

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-tcp/api"
)

func TestError_Format(t *testing.T) {
	e := api.NewError(api.KindSocketBinding, "failed to bind server socket", syscall.EADDRINUSE)
	assert.Equal(t, "SocketBinding: failed to bind server socket: "+syscall.EADDRINUSE.Error(), e.Error())

	bare := api.NewError(api.KindInvalidConfig, "invalid max events", nil)
	assert.Equal(t, "InvalidConfig: invalid max events", bare.Error())
}

func TestError_UnwrapAndKind(t *testing.T) {
	e := api.NewError(api.KindRead, "failed to read from a client", syscall.ECONNRESET)
	wrapped := fmt.Errorf("conn 7: %w", e)

	require.True(t, errors.Is(wrapped, syscall.ECONNRESET))
	assert.True(t, api.IsKind(wrapped, api.KindRead))
	assert.False(t, api.IsKind(wrapped, api.KindWrite))
	assert.Equal(t, api.KindRead, api.KindOf(wrapped))
	assert.Equal(t, api.ErrorKind(0), api.KindOf(errors.New("plain")))
}

func TestErrorKind_Fatal(t *testing.T) {
	for _, k := range []api.ErrorKind{
		api.KindInvalidConfig, api.KindEpollCreation, api.KindSocketCreation,
		api.KindSocketBinding, api.KindSocketListening, api.KindEpollAdd, api.KindEpollWait,
	} {
		assert.True(t, k.Fatal(), k.String())
	}
	for _, k := range []api.ErrorKind{
		api.KindAccept, api.KindRegistration, api.KindPeerAddress, api.KindRead, api.KindWrite, api.KindClosed,
	} {
		assert.False(t, k.Fatal(), k.String())
	}
	assert.Equal(t, "ErrorKind(99)", api.ErrorKind(99).String())
}
