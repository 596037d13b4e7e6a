package server

import (
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ircd/internal/config"
	"ircd/internal/ircmsg"
	"ircd/internal/ircnet"
)

// Server owns the client and channel tables and is the only mutator of
// either, per §5's single-owner shared-resource rule; every other
// component reaches the tables only through its methods. The lock is
// the Go-idiomatic stand-in for §4.6's single event-loop thread (see
// SPEC_FULL.md "Resolved Open Questions #4"): one goroutine per
// connection, one mutex around table mutation and lookup.
type Server struct {
	host     string
	password string
	tuning   config.Tuning

	mu       sync.Mutex
	clients  map[uint64]*Client
	nicks    map[string]uint64
	channels map[string]*Channel
	nextID   uint64

	log     zerolog.Logger
	sock    *ircnet.Socket
	closing chan struct{}
	wg      sync.WaitGroup
}

// New builds a Server. It does not start accepting connections; call
// Serve with a listening Socket to do that.
func New(identity config.Identity, tuning config.Tuning, logger zerolog.Logger) *Server {
	return &Server{
		host:     identity.Host,
		password: identity.Password,
		tuning:   tuning,
		clients:  make(map[uint64]*Client),
		nicks:    make(map[string]uint64),
		channels: make(map[string]*Channel),
		log:      logger,
		closing:  make(chan struct{}),
	}
}

// Serve runs the accept loop until sock is closed (by Shutdown or an
// external caller). Each accepted connection gets its own goroutine,
// per §4.6's per-fd handling translated to Go's connection model.
func (s *Server) Serve(sock *ircnet.Socket) error {
	s.sock = sock
	for {
		conn, err := sock.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return nil
			default:
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Shutdown implements §5's cancellation rule: stop accepting, close
// every client fd, and wait for their goroutines to notice. No
// graceful QUIT broadcast is sent — §5 explicitly does not require one
// on shutdown (as opposed to an individual client's QUIT command).
func (s *Server) Shutdown() {
	close(s.closing)
	if s.sock != nil {
		s.sock.Close()
	}

	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.closeConn()
	}
	s.wg.Wait()
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()

	id := atomic.AddUint64(&s.nextID, 1)
	c := newClient(id, conn, s.tuning.OutputQueueDepth)

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()

	go c.writeLoop()
	s.logConnect(c)
	s.sendBanner(c)

	reason := s.readLoop(c)
	s.disconnect(c, reason)
}

// sendBanner describes PASS/NICK/USER to a freshly accepted, not yet
// registered connection, per §4.6 step 4.
func (s *Server) sendBanner(c *Client) {
	s.send(c, ircmsg.FormatNumeric(s.host, "NOTICE", "*", nil,
		"This server requires PASS <password>, then NICK <nick>, then USER <user> 0 * :<realname>"))
}

// readLoop frames and dispatches lines until the connection ends, and
// returns a human-readable reason for the disconnect.
func (s *Server) readLoop(c *Client) string {
	framer := ircmsg.NewFramer(s.tuning.MaxLineLength)
	buf := make([]byte, 4096)

	for {
		if deadline := s.readDeadline(); deadline > 0 {
			c.conn.SetReadDeadline(time.Now().Add(deadline))
		}

		n, err := c.conn.Read(buf)
		if n > 0 {
			c.touch()
			framer.Feed(buf[:n])
			for {
				line, ok, overrun := framer.ExtractLine()
				if !ok {
					break
				}
				if overrun {
					return "line too long"
				}
				if s.dispatch(c, ircmsg.Parse(line)) == Disconnect {
					return "quit"
				}
			}
		}

		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if s.tuning.IdleTimeout > 0 && c.idleSince() >= s.tuning.IdleTimeout {
					return "idle timeout"
				}
				continue
			}
			if err.Error() == "EOF" {
				return "connection closed"
			}
			return "read error"
		}
	}
}

// readDeadline picks the per-read deadline: the idle timeout, when set,
// is checked more often than the (usually much longer) read timeout so
// an idle peer is reaped promptly without needing a second timer.
func (s *Server) readDeadline() time.Duration {
	if s.tuning.IdleTimeout > 0 {
		return s.tuning.IdleTimeout
	}
	return s.tuning.ReadTimeout
}

// disconnect is the single per-client-fatal teardown path §7 tier 2
// asks for: remove from every channel (destroying any left empty),
// remove from the client/nick tables, and close the connection.
func (s *Server) disconnect(c *Client, reason string) {
	s.mu.Lock()
	names := make([]string, 0, len(c.channels))
	for name := range c.channels {
		names = append(names, name)
	}
	nick := c.nick
	s.mu.Unlock()

	c.mu.Lock()
	quitText := c.quitMsg
	c.mu.Unlock()
	if quitText == "" {
		quitText = reason
	}
	for _, name := range names {
		s.leaveChannel(c, name, "QUIT", nil, quitText)
	}

	s.mu.Lock()
	delete(s.clients, c.id)
	if nick != "" {
		delete(s.nicks, nick)
	}
	s.mu.Unlock()

	s.logDisconnect(c, reason)
	c.closeConn()
}

// leaveChannel removes c from channel name, broadcasting a relay line
// built from command/params/reason to the remaining members, and
// destroys the channel if that empties it, per §3's channel lifecycle
// invariant. Callers pass the verb-appropriate params: PART carries the
// channel name as a param; QUIT carries none (only the trailing reason).
func (s *Server) leaveChannel(c *Client, name, command string, params []string, reason string) {
	s.mu.Lock()
	ch, ok := s.channels[channelKey(name)]
	if !ok {
		s.mu.Unlock()
		return
	}
	ch.removeMember(c.id)
	delete(c.channels, name)
	if ch.isEmpty() {
		delete(s.channels, channelKey(name))
	}
	members := ch.memberList()
	s.mu.Unlock()

	hasTrailing := reason != ""
	line := ircmsg.FormatRelay(c.String(), command, params, reason, hasTrailing)
	for _, m := range members {
		s.send(m, line)
	}
}

func channelKey(name string) string {
	return strings.TrimPrefix(name, "#")
}

func (s *Server) getChannel(name string) (*Channel, bool) {
	ch, ok := s.channels[channelKey(name)]
	return ch, ok
}

func (s *Server) findByNick(nick string) (*Client, bool) {
	id, ok := s.nicks[nick]
	if !ok {
		return nil, false
	}
	c := s.clients[id]
	return c, c != nil
}

// send formats are pre-built wire lines that already carry CRLF;
// Client.Send wants the bare line, so the suffix is trimmed once here
// rather than threading two line conventions through the codebase.
func (s *Server) send(c *Client, wireLine string) {
	if err := c.Send(strings.TrimSuffix(wireLine, "\r\n")); err != nil {
		s.log.Debug().Uint64("id", c.id).Err(err).Msg("send failed")
		if err == errQueueFull {
			c.closeConn()
		}
	}
}

func (s *Server) sendNumeric(c *Client, code string, params []string, text string) {
	s.send(c, ircmsg.FormatNumeric(s.host, code, c.Nick(), params, text))
}

func (s *Server) sendError(c *Client, perr *ProtocolError) {
	s.logProtocolError(c, perr)
	s.sendNumeric(c, perr.Code, perr.Params, perr.message())
}

func (s *Server) sendRelay(c *Client, source, command string, params []string, trailing string, hasTrailing bool) {
	s.send(c, ircmsg.FormatRelay(source, command, params, trailing, hasTrailing))
}

// completeRegistrationIfNeeded fires the §4.4 welcome sequence exactly
// once, on the transition into REGISTERED (all three flags true for the
// first time). NICK and USER both call this, since either one can be
// the flag that completes the set.
func (s *Server) completeRegistrationIfNeeded(c *Client) {
	c.mu.Lock()
	was := c.registered
	c.maybeRegister()
	justRegistered := c.registered && !was
	c.mu.Unlock()

	if !justRegistered {
		return
	}
	s.sendNumeric(c, RplWelcome, nil, "Welcome to the Internet Relay Network "+c.String())
	s.logRegistered(c)
	s.sendHelp(c)
}

// helpLines is the informational listing sent on registration and on
// an explicit HELP command, per §4.4/§4.5.5.
var helpLines = []string{
	"Commands: PASS NICK USER PRIVMSG NOTICE JOIN PART QUIT PING HELP CHANNELS MODE KICK INVITE TOPIC",
}

// sendHelp sends the command listing as the 704/705/706 HELP numeric
// sequence (RPL_HELPSTART/RPL_HELPTXT/RPL_ENDOFHELP) rather than a
// NOTICE, per §4.5.5's "informational numerics."
func (s *Server) sendHelp(c *Client) {
	s.sendNumeric(c, RplHelpStart, []string{"HELP"}, "Start of /HELP")
	for _, line := range helpLines {
		s.sendNumeric(c, RplHelpTxt, []string{"HELP"}, line)
	}
	s.sendNumeric(c, RplEndOfHelp, []string{"HELP"}, "End of /HELP")
}

// broadcastChannel relays a line to every member of ch except, when
// non-nil, the one member who should not see their own echo (§4.5.2:
// "The sender never receives its own copy").
func (s *Server) broadcastChannel(ch *Channel, except *Client, source, command string, params []string, trailing string, hasTrailing bool) {
	line := ircmsg.FormatRelay(source, command, params, trailing, hasTrailing)
	for _, m := range ch.memberList() {
		if except != nil && m.id == except.id {
			continue
		}
		s.send(m, line)
	}
}
