package server

import (
	"strings"

	"ircd/internal/ircmsg"
)

// handleJoin implements §4.5.3 JOIN: a comma-separated channel list with
// an optional comma-separated key list matched positionally. A channel
// that doesn't exist yet is created and the joiner becomes its sole
// operator, announced with a MODE +o broadcast.
func handleJoin(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 1 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "JOIN")
	}

	channels := strings.Split(msg.Params[0], ",")
	var keys []string
	if len(msg.Params) >= 2 {
		keys = strings.Split(msg.Params[1], ",")
	}

	for i, name := range channels {
		if !isValidChannelName(name) {
			s.sendError(c, NewProtocolError(ErrBadChannelName, "", name))
			continue
		}
		var key string
		if i < len(keys) {
			key = keys[i]
		}
		s.joinOne(c, name, key)
	}
	return Continue, nil
}

func (s *Server) joinOne(c *Client, name, key string) {
	s.mu.Lock()
	ch, exists := s.getChannel(name)
	created := false
	if !exists {
		ch = newChannel(name)
		s.channels[channelKey(name)] = ch
		created = true
	} else {
		if ch.Key != "" && ch.Key != key {
			s.mu.Unlock()
			s.sendError(c, NewProtocolError(ErrBadChannelKey, "", name))
			return
		}
		if ch.Invite && !ch.isInvited(c.id) {
			s.mu.Unlock()
			s.sendError(c, NewProtocolError(ErrInviteOnlyChan, "", name))
			return
		}
		if ch.Limit > 0 && len(ch.members) >= ch.Limit {
			s.mu.Unlock()
			s.sendError(c, NewProtocolError(ErrChannelIsFull, "", name))
			return
		}
	}

	ch.addMember(c)
	c.channels[name] = struct{}{}
	if created {
		ch.setOperator(c.id, true)
	}
	members := ch.memberList()
	topic := ch.Topic
	s.mu.Unlock()

	joinLine := ircmsg.FormatRelay(c.String(), "JOIN", []string{name}, "", false)
	for _, m := range members {
		s.send(m, joinLine)
	}

	if created {
		modeLine := ircmsg.FormatRelay(s.host, "MODE", []string{name, "+o", c.Nick()}, "", false)
		for _, m := range members {
			s.send(m, modeLine)
		}
	}

	if topic == "" {
		s.sendNumeric(c, RplNoTopic, []string{name}, "No topic is set")
	} else {
		s.sendNumeric(c, RplTopic, []string{name}, topic)
	}
	s.sendNames(c, ch, name)
}

// sendNames implements the NAMES listing piece of §4.5.3's post-JOIN
// reply, with operator nicks prefixed by '@' per SPEC_FULL.md's
// supplemented WHO/NAMES detail.
func (s *Server) sendNames(c *Client, ch *Channel, name string) {
	s.mu.Lock()
	names := make([]string, 0, len(ch.members))
	for _, m := range ch.memberList() {
		nick := m.Nick()
		if ch.isOperator(m.id) {
			nick = "@" + nick
		}
		names = append(names, nick)
	}
	s.mu.Unlock()

	s.sendNumeric(c, RplNamReply, []string{"=", name}, strings.Join(names, " "))
	s.sendNumeric(c, RplEndOfNames, []string{name}, "End of /NAMES list")
}

// handlePart implements §4.5.3 PART: each channel checked and left
// independently so one bad name doesn't block the rest of the list.
func handlePart(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 1 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "PART")
	}
	var reason string
	if len(msg.Params) >= 2 {
		reason = msg.Params[1]
	}

	for _, name := range strings.Split(msg.Params[0], ",") {
		s.partOne(c, name, reason)
	}
	return Continue, nil
}

func (s *Server) partOne(c *Client, name, reason string) {
	s.mu.Lock()
	ch, ok := s.getChannel(name)
	if !ok {
		s.mu.Unlock()
		s.sendError(c, NewProtocolError(ErrNoSuchChannel, "", name))
		return
	}
	if !ch.isMember(c.id) {
		s.mu.Unlock()
		s.sendError(c, NewProtocolError(ErrNotOnChannel, "", name))
		return
	}
	s.mu.Unlock()

	s.leaveChannel(c, name, "PART", []string{name}, reason)
}

// handleQuit implements §4.5.3 QUIT: the handler itself only records the
// optional reason text and signals Disconnect; the actual channel
// removal and table cleanup happens in the server's single disconnect
// path (Server.disconnect, run once readLoop returns), per §7 tier 2.
func handleQuit(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) >= 1 {
		c.mu.Lock()
		c.quitMsg = msg.Params[len(msg.Params)-1]
		c.mu.Unlock()
	}
	return Disconnect, nil
}
