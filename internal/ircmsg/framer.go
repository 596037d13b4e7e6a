package ircmsg

import "bytes"

// MaxLineLength is the recommended maximum per §4.2/§6 (512 bytes
// including the terminator). Framer enforces it; an oversized line is
// reported via ExtractLine's ok=true/overrun=true return so the caller
// can close the connection as a protocol violation rather than silently
// truncating chat text.
const MaxLineLength = 512

// Framer accumulates bytes from a client's stream and extracts complete
// lines from it, per §4.2. It holds no knowledge of sockets; Feed is
// called with whatever bytes a single non-blocking read produced.
type Framer struct {
	buf   []byte
	limit int // max line length before ExtractLine reports overrun; 0 means MaxLineLength
}

// NewFramer builds a Framer whose overrun threshold is limit bytes. A
// non-positive limit falls back to MaxLineLength, so a caller that
// doesn't configure one gets the §4.2/§6 recommended default rather
// than an unbounded accumulator.
func NewFramer(limit int) *Framer {
	if limit <= 0 {
		limit = MaxLineLength
	}
	return &Framer{limit: limit}
}

// Feed appends newly read bytes to the accumulator.
func (f *Framer) Feed(b []byte) {
	f.buf = append(f.buf, b...)
}

// ExtractLine removes and returns the first complete line from the
// accumulator: everything up to (and including) the first '\n', with a
// single trailing '\r' stripped if present. ok is false if no '\n' has
// arrived yet. A zero-length line (after CR stripping) is legal and is
// returned with ok=true — callers treat it as a protocol no-op, not an
// error. overrun is true if the bytes preceding the '\n' (a trailing
// '\r' included) are at least the framer's limit long, i.e. the line
// with its '\n' exceeds the limit (MaxLineLength unless NewFramer set
// another); the caller should treat this as a protocol violation
// and close the connection rather than dispatch the (possibly truncated
// by the peer's own buffering) line.
func (f *Framer) ExtractLine() (line string, ok bool, overrun bool) {
	idx := bytes.IndexByte(f.buf, '\n')
	if idx == -1 {
		return "", false, false
	}

	raw := f.buf[:idx]
	f.buf = f.buf[idx+1:]

	limit := f.limit
	if limit <= 0 {
		limit = MaxLineLength
	}
	overrun = len(raw) >= limit
	raw = bytes.TrimSuffix(raw, []byte("\r"))
	return string(raw), true, overrun
}

// Pending reports the number of bytes currently buffered and not yet
// part of an extracted line — used by tests asserting §8's invariant
// that no undispatched '\n'-terminated sequence is left behind after a
// drain.
func (f *Framer) Pending() int {
	return len(f.buf)
}
