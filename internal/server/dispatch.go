package server

import "ircd/internal/ircmsg"

// Result is what a command handler tells the dispatcher to do next,
// per §4.5: Continue keeps the connection open; Disconnect tells the
// dispatcher to tear the client down after the handler returns.
type Result int

const (
	Continue Result = iota
	Disconnect
)

// handlerFunc is one entry in the dispatch table. A non-nil
// *ProtocolError is formatted and sent to the client by the dispatcher
// itself (§4.7), keeping the numeric-reply wire format in one place;
// the handler only decides which error and with what parameters.
type handlerFunc func(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError)

// commandTable is the fixed verb → handler table §4.5/§9 asks for, a
// static map keyed by the already-uppercased command rather than a long
// switch.
var commandTable = map[string]handlerFunc{
	"PASS": handlePass,
	"NICK": handleNick,
	"USER": handleUser,

	"PRIVMSG": handlePrivmsg,
	"NOTICE":  handleNotice,

	"JOIN": handleJoin,
	"PART": handlePart,
	"QUIT": handleQuit,

	"KICK":   handleKick,
	"INVITE": handleInvite,
	"TOPIC":  handleTopic,
	"MODE":   handleMode,

	"PING":     handlePing,
	"HELP":     handleHelp,
	"CHANNELS": handleChannels,
}

// registrationVerbs are the only commands allowed before a client is
// fully registered, per §4.4's state table.
var registrationVerbs = map[string]bool{
	"PASS": true,
	"NICK": true,
	"USER": true,
}

// dispatch enforces §4.4's registration gate and then runs the matching
// handler, formatting any ProtocolError it returns. It is called once
// per framed line, per §4.5.
func (s *Server) dispatch(c *Client, msg ircmsg.Message) Result {
	if msg.Command == "" {
		return Continue // empty line: no-op, per §4.2/§4.3
	}

	c.mu.Lock()
	passOK := c.passOK
	registered := c.registered
	c.mu.Unlock()

	if !passOK && msg.Command != "PASS" {
		s.sendError(c, NewProtocolError(ErrUnregistered, ""))
		return Continue
	}
	if passOK && !registered && !registrationVerbs[msg.Command] {
		s.sendError(c, NewProtocolError(ErrUnregistered, ""))
		return Continue
	}

	handler, ok := commandTable[msg.Command]
	if !ok {
		s.sendError(c, NewProtocolError(ErrUnknownCommand, "", msg.Command))
		return Continue
	}

	result, perr := handler(s, c, msg)
	if perr != nil {
		s.sendError(c, perr)
	}
	return result
}
