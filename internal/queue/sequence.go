package queue

import "sync/atomic"

// Sequencer hands out command sequence numbers starting at 1.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }
