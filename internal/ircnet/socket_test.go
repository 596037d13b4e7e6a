package ircnet

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// listenEphemeral asks the OS for an unused port so parallel test runs
// never collide on a fixed one.
func listenEphemeral(t *testing.T) *Socket {
	t.Helper()
	sock, err := Listen(0)
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })
	return sock
}

func TestListenBindsAndReportsAddr(t *testing.T) {
	sock := listenEphemeral(t)
	addr, ok := sock.Addr().(*net.TCPAddr)
	require.True(t, ok)
	require.NotZero(t, addr.Port)
}

func TestListenInvalidPortFails(t *testing.T) {
	_, err := Listen(-1)
	require.Error(t, err)

	var sockErr *Error
	require.ErrorAs(t, err, &sockErr)
	require.Equal(t, ListenFailed, sockErr.Kind)
}

func TestAcceptReturnsConnectedPeer(t *testing.T) {
	sock := listenEphemeral(t)
	addr := sock.Addr().(*net.TCPAddr)

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := sock.Accept()
		require.NoError(t, err)
		accepted <- conn
	}()

	client, err := net.DialTimeout("tcp4", addr.String(), time.Second)
	require.NoError(t, err)
	defer client.Close()

	select {
	case conn := <-accepted:
		defer conn.Close()
		require.NotNil(t, conn)
	case <-time.After(time.Second):
		t.Fatal("Accept did not return a connection in time")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	sock := listenEphemeral(t)
	require.NoError(t, sock.Close())
	require.NoError(t, sock.Close())
}

func TestAcceptAfterCloseFails(t *testing.T) {
	sock := listenEphemeral(t)
	require.NoError(t, sock.Close())

	_, err := sock.Accept()
	require.Error(t, err)

	var sockErr *Error
	require.ErrorAs(t, err, &sockErr)
	require.Equal(t, AcceptFailed, sockErr.Kind)
}

func TestErrKindString(t *testing.T) {
	require.Equal(t, "create failed", CreateFailed.String())
	require.Equal(t, "bind failed", BindFailed.String())
	require.Equal(t, "listen failed", ListenFailed.String())
	require.Equal(t, "accept failed", AcceptFailed.String())
	require.Equal(t, "unknown", ErrKind(99).String())
}
