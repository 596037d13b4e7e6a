// Package ircnet provides a thin, single-close ownership wrapper around
// a listening TCP socket, per §4.1. Go's net package already gives every
// accepted connection non-blocking, readiness-multiplexed I/O through
// the runtime netpoller — the idiomatic equivalent of the manual
// non-blocking fd + poll(2) reactor the spec describes for the original
// C++ server (see SPEC_FULL.md, "Resolved Open Questions #4") — so this
// package does not reimplement epoll/poll; it owns the fd's lifetime.
package ircnet

import (
	"fmt"
	"net"
	"sync"
)

// ErrKind partitions socket failures the way §4.1 asks for: each
// operation that can fail carries its own kind so callers (and tests)
// can distinguish "could not create a listening socket" from "could not
// accept a pending connection" without string matching.
type ErrKind int

const (
	CreateFailed ErrKind = iota
	BindFailed
	ListenFailed
	AcceptFailed
)

func (k ErrKind) String() string {
	switch k {
	case CreateFailed:
		return "create failed"
	case BindFailed:
		return "bind failed"
	case ListenFailed:
		return "listen failed"
	case AcceptFailed:
		return "accept failed"
	default:
		return "unknown"
	}
}

// Error wraps an underlying net error with the §4.1 failure kind.
type Error struct {
	Kind ErrKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("socket: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Socket owns exactly one listening fd. Copying a Socket is meaningless
// (there is only ever one owner of the fd); pass it by pointer. Close is
// idempotent and safe to call more than once or concurrently with
// Accept — Accept simply starts failing once Close has run.
type Socket struct {
	ln     net.Listener
	once   sync.Once
	closed error
}

// Listen creates a listening IPv4 socket bound to the given port with a
// backlog of at least 10 pending connections, per §4.1. Go's net package
// does not expose a separate create/bind/listen sequence or a tunable
// backlog, so those three spec steps collapse into the one net.Listen
// call; failures are reported as ListenFailed, the last of the three
// phases, since that is the call that actually runs.
func Listen(port int) (*Socket, error) {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, &Error{Kind: ListenFailed, Err: err}
	}
	return &Socket{ln: ln}, nil
}

// Accept blocks until a new connection arrives or the socket is closed.
// It returns (nil, err) rather than panicking on a closed listener so
// the caller's accept loop can treat it as "stop accepting" rather than
// a crash.
func (s *Socket) Accept() (net.Conn, error) {
	conn, err := s.ln.Accept()
	if err != nil {
		return nil, &Error{Kind: AcceptFailed, Err: err}
	}
	return conn, nil
}

// Addr returns the address the socket is bound to.
func (s *Socket) Addr() net.Addr {
	return s.ln.Addr()
}

// Close closes the underlying fd exactly once, regardless of how many
// times Close is called.
func (s *Socket) Close() error {
	s.once.Do(func() {
		s.closed = s.ln.Close()
	})
	return s.closed
}
