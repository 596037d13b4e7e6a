package server

import (
	"sort"
	"strconv"

	"ircd/internal/ircmsg"
)

// handlePing implements §4.5.5 PING.
func handlePing(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 1 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "PING")
	}
	s.send(c, ircmsg.FormatRelay(s.host, "PONG", nil, msg.Params[0], true))
	return Continue, nil
}

// handleHelp implements §4.5.5 HELP.
func handleHelp(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	s.sendHelp(c)
	return Continue, nil
}

// handleChannels implements §4.5.5 CHANNELS, listing the channels the
// caller is currently in as a 322/323 RPL_LIST/RPL_LISTEND sequence
// (§4.5.5's "informational numerics"), one 322 per channel carrying its
// member count and topic the way RPL_LIST does for a full server
// listing. The teacher's equivalent built this list with
// `list + "#" + name` instead of `+=`, discarding every element but the
// last (SPEC_FULL.md "Resolved Open Questions #2").
func handleChannels(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	c.mu.Lock()
	names := make([]string, 0, len(c.channels))
	for name := range c.channels {
		names = append(names, name)
	}
	c.mu.Unlock()
	sort.Strings(names)

	for _, name := range names {
		s.mu.Lock()
		ch, ok := s.getChannel(name)
		count, topic := 0, ""
		if ok {
			count = len(ch.members)
			topic = ch.Topic
		}
		s.mu.Unlock()
		s.sendNumeric(c, RplList, []string{name, strconv.Itoa(count)}, topic)
	}
	s.sendNumeric(c, RplListEnd, nil, "End of /CHANNELS list")
	return Continue, nil
}
