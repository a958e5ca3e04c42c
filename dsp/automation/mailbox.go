package automation

import "sync/atomic"

type letter[T any] struct {
	seq uint64
	v   T
}

// Mailbox is a single-slot, last-writer-wins cell shared by one control
// goroutine and one render goroutine. Post allocates; Poll does not.
//
// The zero value is an empty mailbox.
type Mailbox[T any] struct {
	seq  atomic.Uint64
	cell atomic.Pointer[letter[T]]
}

// Post publishes v and returns its sequence number. Sequence numbers start
// at 1 and increase with every post.
func (m *Mailbox[T]) Post(v T) uint64 {
	seq := m.seq.Add(1)
	m.cell.Store(&letter[T]{seq: seq, v: v})
	return seq
}

// Poll returns the newest value if its sequence number is greater than
// seen. The caller keeps the returned sequence number for the next poll.
func (m *Mailbox[T]) Poll(seen uint64) (v T, seq uint64, ok bool) {
	l := m.cell.Load()
	if l == nil || l.seq <= seen {
		return v, seen, false
	}
	return l.v, l.seq, true
}

// Peek returns the newest posted value regardless of whether it was polled.
func (m *Mailbox[T]) Peek() (v T, ok bool) {
	l := m.cell.Load()
	if l == nil {
		return v, false
	}
	return l.v, true
}
