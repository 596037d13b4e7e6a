package server

import "ircd/internal/ircmsg"

// handlePass implements §4.5.1 PASS: exactly one param, checked against
// the configured server password. A correct PASS is the only thing that
// advances a client out of INITIAL; a repeat PASS after success is
// rejected as a reregistration attempt.
func handlePass(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 1 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "PASS")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.passOK {
		return Continue, NewProtocolError(ErrAlreadyRegistered, "")
	}
	if msg.Params[0] != s.password {
		return Continue, NewProtocolError(ErrPasswdMismatch, "")
	}
	c.passOK = true
	return Continue, nil
}

// handleNick implements §4.5.1 NICK: validation, collision check against
// every live client, the "is now known as" broadcast whenever a
// previously set nick changes, and triggering the welcome sequence the first
// time registration completes.
func handleNick(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 1 || msg.Params[0] == "" {
		return Continue, NewProtocolError(ErrNoNicknameGiven, "")
	}
	nick := msg.Params[0]
	if !isValidNick(nick) {
		return Continue, NewProtocolError(ErrErroneousNickname, "", nick)
	}

	s.mu.Lock()
	if existing, ok := s.nicks[nick]; ok && existing != c.id {
		s.mu.Unlock()
		return Continue, NewProtocolError(ErrNicknameInUse, "", nick)
	}

	c.mu.Lock()
	oldNick := c.nick
	c.nick = nick
	c.nickOK = true
	c.mu.Unlock()

	if oldNick != "" {
		delete(s.nicks, oldNick)
	}
	s.nicks[nick] = c.id
	clients := make([]*Client, 0, len(s.clients))
	for _, cl := range s.clients {
		clients = append(clients, cl)
	}
	s.mu.Unlock()

	if oldNick != "" {
		for _, cl := range clients {
			if cl.id == c.id {
				continue
			}
			s.sendNumeric(cl, "NOTICE", nil, oldNick+" is now known as "+nick)
		}
	}

	s.completeRegistrationIfNeeded(c)
	return Continue, nil
}

// handleUser implements §4.5.1 USER: mode must be literally "0", unused
// must be literally "*", username non-empty alphanumeric, realname taken
// verbatim from the trailing parameter.
func handleUser(s *Server, c *Client, msg ircmsg.Message) (Result, *ProtocolError) {
	if len(msg.Params) < 4 {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "USER")
	}

	c.mu.Lock()
	alreadyUserOK := c.userOK
	c.mu.Unlock()
	if alreadyUserOK {
		return Continue, NewProtocolError(ErrAlreadyRegistered, "")
	}

	user, mode, unused, realname := msg.Params[0], msg.Params[1], msg.Params[2], msg.Params[3]
	if mode != "0" || unused != "*" || !isValidUsername(user) {
		return Continue, NewProtocolError(ErrNeedMoreParams, "", "USER")
	}

	c.mu.Lock()
	c.user = user
	c.realname = realname
	c.userOK = true
	c.mu.Unlock()

	s.completeRegistrationIfNeeded(c)
	return Continue, nil
}
