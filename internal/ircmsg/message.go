// Package ircmsg tokenises raw IRC protocol lines into structured
// messages and formats structured replies back into wire lines.
package ircmsg

import "strings"

// Message is the result of parsing one framed line: an optional source
// prefix, an uppercased command, and an ordered list of parameters. At
// most the last parameter may contain spaces (the "trailing" parameter,
// introduced by " :" in the wire form).
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// Parse tokenises a single line (without its trailing CR/LF) into a
// Message. An empty line yields a Message with an empty Command, which
// callers should treat as a no-op. Parse never returns an error: any
// line that doesn't look like a valid message simply has fewer fields
// populated, matching §4.3's grammar.
func Parse(line string) Message {
	var m Message

	if line == "" {
		return m
	}

	if line[0] == ':' {
		sp := strings.IndexByte(line, ' ')
		if sp == -1 {
			m.Prefix = line[1:]
			return m
		}
		m.Prefix = line[1:sp]
		line = line[sp+1:]
	}

	// A trailing parameter is introduced by " :" — everything after it,
	// colon excluded, is one parameter, spaces included. We must find
	// that exact two-character run, not any bare colon, so that a
	// middle parameter is free to contain one (e.g. a channel key).
	var trailing string
	hasTrailing := false
	if idx := strings.Index(line, " :"); idx != -1 {
		trailing = line[idx+2:]
		hasTrailing = true
		line = line[:idx]
	} else if strings.HasPrefix(line, ":") {
		trailing = line[1:]
		hasTrailing = true
		line = ""
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		if hasTrailing {
			// a bare ":trailing" with no command is not a valid
			// message; fall through with an empty command.
			return m
		}
		return m
	}

	m.Command = strings.ToUpper(fields[0])
	m.Params = append(m.Params, fields[1:]...)
	if hasTrailing {
		m.Params = append(m.Params, trailing)
	}
	return m
}

// Raw renders a Message back into its wire form, without the trailing
// CRLF. Feeding Raw's output back through Parse recovers the original
// (Prefix, Command, Params) per §8's round-trip property, as long as
// only the last parameter contains spaces.
func (m Message) Raw() string {
	var b strings.Builder
	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)
	for i, p := range m.Params {
		b.WriteByte(' ')
		last := i == len(m.Params)-1
		if last && (p == "" || strings.ContainsRune(p, ' ') || strings.HasPrefix(p, ":")) {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	return b.String()
}

// FormatNumeric builds a server-originated numeric reply per §4.7:
// ":<server-host> <code> <target> <params…> :<text>". target is
// conventionally the recipient's current nick (or "*" before
// registration). text is always sent as the trailing parameter, even
// when empty.
func FormatNumeric(host, code, target string, params []string, text string) string {
	m := Message{
		Prefix:  host,
		Command: code,
		Params:  append([]string{target}, params...),
	}
	return m.Raw() + " :" + text + "\r\n"
}

// FormatRelay builds a client-sourced relay line per §4.7:
// ":<nick>!<user>@host <command> <params…>[ :<trailing>]". trailing is
// appended as the last parameter only when hasTrailing is true, which
// lets commands with no trailing parameter (e.g. a bare JOIN echo) omit
// the leading colon on an empty string.
func FormatRelay(source, command string, params []string, trailing string, hasTrailing bool) string {
	m := Message{Prefix: source, Command: command, Params: params}
	line := m.Raw()
	if hasTrailing {
		line += " :" + trailing
	}
	return line + "\r\n"
}

// SourceMask renders the "<nick>!<user>@host" hostmask used as the
// prefix of every relayed client message. host is a placeholder string
// per §4.7's explicit allowance, used consistently rather than the
// client's real remote address.
func SourceMask(nick, user string) string {
	return nick + "!" + user + "@host"
}
