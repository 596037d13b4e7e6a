package server

import (
	"os"

	"github.com/rs/zerolog"
)

// Event names used as the "event" field on every server log line, so a
// log aggregator can filter on them without parsing message text.
const (
	eventConnect       = "connect"
	eventDisconnect    = "disconnect"
	eventRegistered    = "registered"
	eventProtocolError = "protocol_error"
)

// NewLogger builds the console logger used by cmd/ircd. Terminal color
// escapes are explicitly out of scope (§1), so the console writer is
// built with NoColor always on rather than left to auto-detection.
func NewLogger() zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: "15:04:05"}
	return zerolog.New(w).With().Timestamp().Logger()
}

func (s *Server) logConnect(c *Client) {
	s.log.Info().
		Str("event", eventConnect).
		Uint64("id", c.id).
		Str("remote", c.conn.RemoteAddr().String()).
		Msg("client connected")
}

func (s *Server) logDisconnect(c *Client, reason string) {
	s.log.Info().
		Str("event", eventDisconnect).
		Uint64("id", c.id).
		Str("nick", c.Nick()).
		Str("reason", reason).
		Msg("client disconnected")
}

func (s *Server) logRegistered(c *Client) {
	s.log.Info().
		Str("event", eventRegistered).
		Uint64("id", c.id).
		Str("nick", c.Nick()).
		Msg("client registered")
}

func (s *Server) logProtocolError(c *Client, perr *ProtocolError) {
	s.log.Debug().
		Str("event", eventProtocolError).
		Uint64("id", c.id).
		Str("nick", c.Nick()).
		Str("code", perr.Code).
		Msg("protocol error reply sent")
}
