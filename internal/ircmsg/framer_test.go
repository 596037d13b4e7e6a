package ircmsg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLineNoLineYet(t *testing.T) {
	var f Framer
	f.Feed([]byte("PING "))

	line, ok, overrun := f.ExtractLine()
	require.False(t, ok)
	require.False(t, overrun)
	require.Equal(t, "", line)
	require.Equal(t, 5, f.Pending(), "unterminated bytes stay buffered")
}

func TestExtractLineStripsCRLF(t *testing.T) {
	var f Framer
	f.Feed([]byte("PING :tok\r\n"))

	line, ok, overrun := f.ExtractLine()
	require.True(t, ok)
	require.False(t, overrun)
	require.Equal(t, "PING :tok", line)
	require.Equal(t, 0, f.Pending())
}

func TestExtractLineAcceptsBareLF(t *testing.T) {
	var f Framer
	f.Feed([]byte("PING :tok\n"))

	line, ok, _ := f.ExtractLine()
	require.True(t, ok)
	require.Equal(t, "PING :tok", line, "a bare LF terminator is legal, per §6")
}

func TestExtractLineZeroLengthLineIsLegal(t *testing.T) {
	var f Framer
	f.Feed([]byte("\r\n"))

	line, ok, overrun := f.ExtractLine()
	require.True(t, ok)
	require.False(t, overrun)
	require.Equal(t, "", line)
}

func TestExtractLineMultipleLinesOneFeed(t *testing.T) {
	var f Framer
	f.Feed([]byte("NICK alice\r\nUSER alice 0 * :Alice A\r\n"))

	line1, ok1, _ := f.ExtractLine()
	require.True(t, ok1)
	require.Equal(t, "NICK alice", line1)

	line2, ok2, _ := f.ExtractLine()
	require.True(t, ok2)
	require.Equal(t, "USER alice 0 * :Alice A", line2)

	_, ok3, _ := f.ExtractLine()
	require.False(t, ok3)
	require.Equal(t, 0, f.Pending())
}

func TestExtractLinePartialFeedsAccumulate(t *testing.T) {
	var f Framer
	f.Feed([]byte("PRIV"))
	_, ok, _ := f.ExtractLine()
	require.False(t, ok)

	f.Feed([]byte("MSG #room :hi\r\n"))
	line, ok, _ := f.ExtractLine()
	require.True(t, ok)
	require.Equal(t, "PRIVMSG #room :hi", line)
}

// overrun compares the line as buffered before the terminating '\n' —
// including its trailing '\r' — against the limit, so content of
// length limit-1 is the shortest line that overruns.
func TestExtractLineOverrunUsesDefaultLimit(t *testing.T) {
	var f Framer
	long := strings.Repeat("a", MaxLineLength-1)
	f.Feed([]byte(long + "\r\n"))

	line, ok, overrun := f.ExtractLine()
	require.True(t, ok)
	require.True(t, overrun)
	require.Equal(t, long, line, "the overrun line is still returned so the caller can decide")
}

func TestExtractLineWithinDefaultLimitDoesNotOverrun(t *testing.T) {
	var f Framer
	short := strings.Repeat("a", MaxLineLength-2)
	f.Feed([]byte(short + "\r\n"))

	_, ok, overrun := f.ExtractLine()
	require.True(t, ok)
	require.False(t, overrun)
}

func TestNewFramerCustomLimit(t *testing.T) {
	f := NewFramer(10)

	f.Feed([]byte("12345678\r\n")) // 8 bytes + CR = 9, under limit 10
	_, ok, overrun := f.ExtractLine()
	require.True(t, ok)
	require.False(t, overrun)

	f.Feed([]byte("123456789\r\n")) // 9 bytes + CR = 10, at limit 10
	_, ok, overrun = f.ExtractLine()
	require.True(t, ok)
	require.True(t, overrun)
}

func TestNewFramerNonPositiveLimitFallsBackToDefault(t *testing.T) {
	f := NewFramer(0)
	long := strings.Repeat("a", MaxLineLength-1)
	f.Feed([]byte(long + "\r\n"))

	_, ok, overrun := f.ExtractLine()
	require.True(t, ok)
	require.True(t, overrun)
}
