package server

import "time"

// Channel is a named multi-party message target, per §3. All access to
// a Channel happens while the owning Server holds its table mutex (see
// SPEC_FULL.md "Resolved Open Questions #4") — Channel itself holds no
// lock of its own, matching §5's "no locks" beyond the single table
// owner.
type Channel struct {
	Name    string
	Topic   string
	Key     string // empty means no key required
	Invite  bool   // invite-only (+i)
	TopicOp bool   // topic restricted to operators (+t)
	Limit   int    // 0 means unlimited

	Created time.Time

	members   map[uint64]*Client
	operators map[uint64]struct{}
	invited   map[uint64]struct{}
}

// newChannel creates an empty channel. Per §3's lifecycle, a Channel is
// never constructed except as part of a JOIN that finds no existing
// channel by that name; the caller is responsible for granting the
// founding joiner operator status.
func newChannel(name string) *Channel {
	return &Channel{
		Name:      name,
		Created:   time.Now(),
		members:   make(map[uint64]*Client),
		operators: make(map[uint64]struct{}),
		invited:   make(map[uint64]struct{}),
	}
}

func (ch *Channel) addMember(c *Client) {
	ch.members[c.id] = c
}

// removeMember drops id from the member and operator sets; the invited
// set is left unchanged. Per §3's invariant (operators ⊆ members),
// removing from members must also remove from operators.
func (ch *Channel) removeMember(id uint64) {
	delete(ch.members, id)
	delete(ch.operators, id)
}

func (ch *Channel) isMember(id uint64) bool {
	_, ok := ch.members[id]
	return ok
}

func (ch *Channel) isOperator(id uint64) bool {
	_, ok := ch.operators[id]
	return ok
}

func (ch *Channel) isInvited(id uint64) bool {
	_, ok := ch.invited[id]
	return ok
}

func (ch *Channel) invite(id uint64) {
	ch.invited[id] = struct{}{}
}

func (ch *Channel) setOperator(id uint64, on bool) {
	if on {
		ch.operators[id] = struct{}{}
	} else {
		delete(ch.operators, id)
	}
}

// isEmpty reports whether the channel has no members left, per §3's
// lifecycle rule: "a channel with an empty member set does not
// persist."
func (ch *Channel) isEmpty() bool {
	return len(ch.members) == 0
}

// memberList returns every member client, in no particular order.
func (ch *Channel) memberList() []*Client {
	out := make([]*Client, 0, len(ch.members))
	for _, c := range ch.members {
		out = append(out, c)
	}
	return out
}
