package server

import (
	"strconv"

	"ircd/internal/ircmsg"
)

// handleKick implements §4.5.4 KICK. Removing the target can empty and
// destroy the channel, same as PART; the kicked client is notified
// directly since removeMember has already dropped it from memberList.
func handleKick(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 2 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "KICK")
	}
	name, targetNick := msg.Params[0], msg.Params[1]
	reason := c.Nick()
	if len(msg.Params) >= 3 {
		reason = msg.Params[2]
	}

	s.mu.Lock()
	ch, ok := s.getChannel(name)
	if !ok {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrNoSuchChannel, "", name)
	}
	if !ch.isOperator(c.id) {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrChanOPrivsNeeded, "", name)
	}
	target, found := s.findByNick(targetNick)
	if !found || !ch.isMember(target.id) {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrUserNotInChannel, "", targetNick, name)
	}

	ch.removeMember(target.id)
	delete(target.channels, name)
	if ch.isEmpty() {
		delete(s.channels, channelKey(name))
	}
	members := ch.memberList()
	s.mu.Unlock()

	line := ircmsg.FormatRelay(c.String(), "KICK", []string{name, targetNick}, reason, true)
	s.send(target, line)
	for _, m := range members {
		s.send(m, line)
	}
	return Continue, nil
}

// handleInvite implements §4.5.4 INVITE.
func handleInvite(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 2 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "INVITE")
	}
	targetNick, name := msg.Params[0], msg.Params[1]

	s.mu.Lock()
	ch, ok := s.getChannel(name)
	if !ok {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrNoSuchChannel, "", name)
	}
	if !ch.isOperator(c.id) {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrChanOPrivsNeeded, "", name)
	}
	target, found := s.findByNick(targetNick)
	if !found {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrNoSuchNick, "", targetNick)
	}
	if ch.isMember(target.id) {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrUserOnChannel, "", targetNick, name)
	}
	ch.invite(target.id)
	s.mu.Unlock()

	s.sendRelay(target, c.String(), "INVITE", []string{targetNick}, name, true)
	return Continue, nil
}

// handleTopic implements §4.5.4 TOPIC. Viewing the topic never requires
// operator status; setting it does only when the channel has +t set —
// that flag is exactly what makes the distinction meaningful, so the
// operator-commands header is read here as "mutating is gated," not
// "reading is gated too."
func handleTopic(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 1 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "TOPIC")
	}
	name := msg.Params[0]

	s.mu.Lock()
	ch, ok := s.getChannel(name)
	if !ok {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrNoSuchChannel, "", name)
	}

	if len(msg.Params) < 2 {
		topic := ch.Topic
		s.mu.Unlock()
		if topic == "" {
			s.sendNumeric(c, RplNoTopic, []string{name}, "No topic is set")
		} else {
			s.sendNumeric(c, RplTopic, []string{name}, topic)
		}
		return Continue, nil
	}

	if ch.TopicOp && !ch.isOperator(c.id) {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrChanOPrivsNeeded, "", name)
	}
	text := msg.Params[1]
	ch.Topic = text
	members := ch.memberList()
	s.mu.Unlock()

	line := ircmsg.FormatRelay(c.String(), "TOPIC", []string{name}, text, true)
	for _, m := range members {
		s.send(m, line)
	}
	return Continue, nil
}

// modeChange is one applied flag, broadcast as its own MODE line — the
// §4.5.4 left-to-right flag/argument consumption is resolved while
// s.mu is held, then broadcast after release.
type modeChange struct {
	flag string
	arg  string
}

// handleMode implements §4.5.4 MODE: +i/-i, +t/-t, +k/-k <key>,
// +o/-o <nick>, +l/-l <n>, left to right, each flag consuming zero or
// one argument. An unknown flag character stops processing and replies
// 472 for that character; flags already applied before it stay applied.
func handleMode(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 2 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "MODE")
	}
	name, flags := msg.Params[0], msg.Params[1]
	args := msg.Params[2:]

	s.mu.Lock()
	ch, ok := s.getChannel(name)
	if !ok {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrNoSuchChannel, "", name)
	}
	if !ch.isOperator(c.id) {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrChanOPrivsNeeded, "", name)
	}

	var applied []modeChange
	adding := true
	argIdx := 0
	nextArg := func() (string, bool) {
		if argIdx >= len(args) {
			return "", false
		}
		v := args[argIdx]
		argIdx++
		return v, true
	}

	var unknown rune
	for _, f := range flags {
		switch f {
		case '+':
			adding = true
		case '-':
			adding = false
		case 'i':
			ch.Invite = adding
			applied = append(applied, modeChange{sign(adding) + "i", ""})
		case 't':
			ch.TopicOp = adding
			applied = append(applied, modeChange{sign(adding) + "t", ""})
		case 'k':
			if adding {
				key, got := nextArg()
				if !got {
					s.mu.Unlock()
					return Continue, NewProtocolError(ErrNeedMoreParams, "", "MODE")
				}
				ch.Key = key
				applied = append(applied, modeChange{"+k", key})
			} else {
				ch.Key = ""
				applied = append(applied, modeChange{"-k", ""})
			}
		case 'o':
			nick, got := nextArg()
			if !got {
				s.mu.Unlock()
				return Continue, NewProtocolError(ErrNeedMoreParams, "", "MODE")
			}
			if target, found := s.findByNick(nick); found && ch.isMember(target.id) {
				ch.setOperator(target.id, adding)
				applied = append(applied, modeChange{sign(adding) + "o", nick})
			}
		case 'l':
			if adding {
				raw, got := nextArg()
				if !got {
					s.mu.Unlock()
					return Continue, NewProtocolError(ErrNeedMoreParams, "", "MODE")
				}
				if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
					ch.Limit = n
					applied = append(applied, modeChange{"+l", raw})
				}
			} else {
				ch.Limit = 0
				applied = append(applied, modeChange{"-l", ""})
			}
		default:
			unknown = f
		}
		if unknown != 0 {
			break
		}
	}
	members := ch.memberList()
	s.mu.Unlock()

	for _, change := range applied {
		params := []string{name, change.flag}
		if change.arg != "" {
			params = append(params, change.arg)
		}
		line := ircmsg.FormatRelay(c.String(), "MODE", params, "", false)
		for _, m := range members {
			s.send(m, line)
		}
	}

	if unknown != 0 {
		return Continue, NewProtocolError(ErrUnknownMode, "", string(unknown))
	}
	return Continue, nil
}

func sign(adding bool) string {
	if adding {
		return "+"
	}
	return "-"
}
