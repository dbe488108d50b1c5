package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing event sequence numbers.
type Sequencer struct {
	last atomic.Uint64
}

// New starts after last. Pass zero on a fresh outbox, or the highest stored
// sequence when resuming.
func New(last uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(last)
	return s
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current is the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}
