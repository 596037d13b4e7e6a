package server

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ircd/internal/config"
	"ircd/internal/ircmsg"
)

func newTestServer() *Server {
	return New(
		config.Identity{Port: 0, Password: "secret", Host: "localhost"},
		config.DefaultTuning(),
		zerolog.Nop(),
	)
}

// registerTestClient drives a client through PASS/NICK/USER via the real
// dispatcher, the same path a real connection takes, and returns the
// client with its writer goroutine already running.
func registerTestClient(t *testing.T, s *Server, id uint64, nick string) (*Client, *mockConn) {
	t.Helper()
	conn := &mockConn{readData: strings.NewReader("")}
	c := newClient(id, conn, 10)
	go c.writeLoop()
	t.Cleanup(c.closeConn)

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()

	require.Equal(t, Continue, s.dispatch(c, ircmsg.Parse("PASS secret")))
	require.Equal(t, Continue, s.dispatch(c, ircmsg.Parse("NICK "+nick)))
	require.Equal(t, Continue, s.dispatch(c, ircmsg.Parse("USER "+nick+" 0 * :Test User")))

	require.True(t, c.registered, "client should be registered after PASS/NICK/USER")
	return c, conn
}

func TestHappyRegistration(t *testing.T) {
	s := newTestServer()
	c, conn := registerTestClient(t, s, 1, "alice")

	require.Eventually(t, func() bool {
		return strings.Contains(conn.String(), "001")
	}, time.Second, time.Millisecond)
	require.Contains(t, conn.String(), "alice")
	require.True(t, c.registered)
}

func TestWrongPasswordBlocksRegistration(t *testing.T) {
	s := newTestServer()
	conn := &mockConn{readData: strings.NewReader("")}
	c := newClient(1, conn, 10)
	go c.writeLoop()
	t.Cleanup(c.closeConn)
	s.mu.Lock()
	s.clients[1] = c
	s.mu.Unlock()

	s.dispatch(c, ircmsg.Parse("PASS wrong"))
	require.False(t, c.passOK)
	require.Eventually(t, func() bool {
		return strings.Contains(conn.String(), "464")
	}, time.Second, time.Millisecond)

	s.dispatch(c, ircmsg.Parse("NICK bob"))
	require.Eventually(t, func() bool {
		return strings.Contains(conn.String(), "451")
	}, time.Second, time.Millisecond)
}

func TestNickCollision(t *testing.T) {
	s := newTestServer()
	_, _ = registerTestClient(t, s, 1, "alice")

	conn2 := &mockConn{readData: strings.NewReader("")}
	c2 := newClient(2, conn2, 10)
	go c2.writeLoop()
	t.Cleanup(c2.closeConn)
	s.mu.Lock()
	s.clients[2] = c2
	s.mu.Unlock()

	s.dispatch(c2, ircmsg.Parse("PASS secret"))
	s.dispatch(c2, ircmsg.Parse("NICK alice"))

	require.Eventually(t, func() bool {
		return strings.Contains(conn2.String(), "433")
	}, time.Second, time.Millisecond)
	require.Equal(t, "", c2.nick)
}

func TestChannelCreateAndBroadcast(t *testing.T) {
	s := newTestServer()
	c1, conn1 := registerTestClient(t, s, 1, "alice")
	c2, conn2 := registerTestClient(t, s, 2, "bob")

	s.dispatch(c1, ircmsg.Parse("JOIN #room"))
	s.dispatch(c2, ircmsg.Parse("JOIN #room"))
	conn1.Reset()
	conn2.Reset()

	s.dispatch(c1, ircmsg.Parse("PRIVMSG #room :hi"))

	require.Eventually(t, func() bool {
		return strings.Contains(conn2.String(), "PRIVMSG #room :hi")
	}, time.Second, time.Millisecond)
	require.NotContains(t, conn1.String(), "PRIVMSG #room :hi", "sender must not receive its own copy")

	ch, ok := s.getChannel("#room")
	require.True(t, ok)
	require.True(t, ch.isOperator(c1.id), "founding joiner is operator")
	require.False(t, ch.isOperator(c2.id))
}

func TestPartDestroysEmptyChannel(t *testing.T) {
	s := newTestServer()
	c1, _ := registerTestClient(t, s, 1, "alice")
	c2, _ := registerTestClient(t, s, 2, "bob")

	s.dispatch(c1, ircmsg.Parse("JOIN #room"))
	s.dispatch(c2, ircmsg.Parse("JOIN #room"))

	s.dispatch(c1, ircmsg.Parse("PART #room"))
	_, stillExists := s.getChannel("#room")
	require.True(t, stillExists, "channel survives while bob is still a member")

	s.dispatch(c2, ircmsg.Parse("PART #room"))
	_, existsAfter := s.getChannel("#room")
	require.False(t, existsAfter, "channel is destroyed once empty")

	c3, _ := registerTestClient(t, s, 3, "carol")
	s.dispatch(c3, ircmsg.Parse("JOIN #room"))
	ch, ok := s.getChannel("#room")
	require.True(t, ok, "JOIN recreates a destroyed channel")
	require.True(t, ch.isOperator(c3.id), "the new founder is operator again")
}

func TestQuitRemovesClientFromChannels(t *testing.T) {
	s := newTestServer()
	c1, _ := registerTestClient(t, s, 1, "alice")
	c2, conn2 := registerTestClient(t, s, 2, "bob")

	s.dispatch(c1, ircmsg.Parse("JOIN #room"))
	s.dispatch(c2, ircmsg.Parse("JOIN #room"))
	conn2.Reset()

	result := s.dispatch(c1, ircmsg.Parse("QUIT :goodbye"))
	require.Equal(t, Disconnect, result)

	s.disconnect(c1, "quit")

	ch, ok := s.getChannel("#room")
	require.True(t, ok)
	require.False(t, ch.isMember(c1.id))

	s.mu.Lock()
	_, stillTracked := s.clients[c1.id]
	s.mu.Unlock()
	require.False(t, stillTracked)
}

func TestUnknownCommandRepliesUnknownCommand(t *testing.T) {
	s := newTestServer()
	c, conn := registerTestClient(t, s, 1, "alice")
	conn.Reset()

	s.dispatch(c, ircmsg.Parse("FROBNICATE foo"))
	require.Eventually(t, func() bool {
		return strings.Contains(conn.String(), "421")
	}, time.Second, time.Millisecond)
}
