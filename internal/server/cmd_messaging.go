package server

import (
	"strings"

	"ircd/internal/ircmsg"
)

// handlePrivmsg implements §4.5.2 PRIVMSG: one or more comma-separated
// targets, each resolved and relayed independently so one bad target in
// a list doesn't suppress delivery to the others.
func handlePrivmsg(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 2 {
		return Continue, NewProtocolError(ErrNoRecipient, "")
	}
	s.deliverToTargets(c, msg.Params[0], "PRIVMSG", msg.Params[1])
	return Continue, nil
}

// handleNotice implements the supplemented NOTICE verb (SPEC_FULL.md
// "Supplemented Features"): same targeting as PRIVMSG, but a bad target
// never generates an error reply — standard IRC behavior for NOTICE,
// meant to avoid reply loops between two servers' NOTICE handlers.
func handleNotice(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 2 {
		return Continue, nil
	}
	s.deliverToTargets(c, msg.Params[0], "NOTICE", msg.Params[1])
	return Continue, nil
}

func (s *Server) deliverToTargets(c *Client, targetList, command, text string) {
	for _, target := range strings.Split(targetList, ",") {
		if target == "" {
			continue
		}
		s.deliverOne(c, target, command, text)
	}
}

func (s *Server) deliverOne(c *Client, target, command, text string) {
	silent := command == "NOTICE"

	if strings.HasPrefix(target, "#") {
		s.mu.Lock()
		ch, ok := s.getChannel(target)
		if !ok {
			s.mu.Unlock()
			if !silent {
				s.sendError(c, NewProtocolError(ErrNoSuchChannel, "", target))
			}
			return
		}
		if !ch.isMember(c.id) {
			s.mu.Unlock()
			if !silent {
				s.sendError(c, NewProtocolError(ErrCannotSendToChan, "", target))
			}
			return
		}
		s.broadcastChannel(ch, c, c.String(), command, []string{target}, text, true)
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	dest, ok := s.findByNick(target)
	s.mu.Unlock()
	if !ok {
		if !silent {
			s.sendError(c, NewProtocolError(ErrNoSuchNick, "", target))
		}
		return
	}
	s.sendRelay(dest, c.String(), command, []string{target}, text, true)
}
