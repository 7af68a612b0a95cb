// stats.go
//
// Traffic counters for one producer/consumer pair.
//
// Each side owns its counters and is the only writer; readers (metrics,
// reports) load them atomically at any time. Padding keeps the producer's
// lines away from the consumer's so counting never adds cross-core traffic
// beyond what the queue itself needs.

package stats

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Producer counts Enqueue outcomes.
type Producer struct {
	_        cpu.CacheLinePad
	Enqueued atomic.Uint64 // accepted items
	Full     atomic.Uint64 // rejected attempts
	_        cpu.CacheLinePad
}

// Consumer counts Dequeue outcomes.
type Consumer struct {
	_        cpu.CacheLinePad
	Dequeued atomic.Uint64 // delivered items
	Empty    atomic.Uint64 // polls that found nothing
	_        cpu.CacheLinePad
}

// Pair groups both sides of one queue.
type Pair struct {
	Producer Producer
	Consumer Consumer
}

// Snapshot is a point-in-time copy of a Pair.
type Snapshot struct {
	Enqueued uint64 `json:"enqueued"`
	Full     uint64 `json:"full"`
	Dequeued uint64 `json:"dequeued"`
	Empty    uint64 `json:"empty"`
}

// Snapshot loads every counter. The four loads are independent, so a
// snapshot taken mid-run may show Dequeued ahead of a stale Enqueued.
func (p *Pair) Snapshot() Snapshot {
	return Snapshot{
		Enqueued: p.Producer.Enqueued.Load(),
		Full:     p.Producer.Full.Load(),
		Dequeued: p.Consumer.Dequeued.Load(),
		Empty:    p.Consumer.Empty.Load(),
	}
}

// InFlight is Enqueued minus Dequeued, clamped at zero.
func (s Snapshot) InFlight() uint64 {
	if s.Dequeued > s.Enqueued {
		return 0
	}
	return s.Enqueued - s.Dequeued
}

// Sub returns the counter deltas from before to s.
func (s Snapshot) Sub(before Snapshot) Snapshot {
	return Snapshot{
		Enqueued: s.Enqueued - before.Enqueued,
		Full:     s.Full - before.Full,
		Dequeued: s.Dequeued - before.Dequeued,
		Empty:    s.Empty - before.Empty,
	}
}
