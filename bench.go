package main

import (
	"encoding/hex"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/crypto/sha3"

	"ringqueue/alloc"
	"ringqueue/control"
	"ringqueue/debug"
	"ringqueue/pinned"
	"ringqueue/queue"
	"ringqueue/report"
	"ringqueue/stats"
	"ringqueue/utils"
)

// Sample is the fixed-size item pushed through the queue. Every field is
// derived from Seq so the consumer can validate it in isolation.
type Sample struct {
	Seq     uint64    // 8B - position in the stream
	Check   uint64    // 8B - utils.Mix64(Seq)
	Payload [6]uint64 // 48B - Mix64 chain seeded by Check
}

// allocators maps --alloc values to backend constructors.
var allocators = map[string]func() alloc.Allocator{
	"heap": func() alloc.Allocator { return alloc.NewHeap() },
	"mmap": func() alloc.Allocator { return alloc.NewMmap() },
}

// fill derives a sample from its sequence number.
//
//go:nosplit
//go:inline
func fill(seq uint64, s *Sample) {
	s.Seq = seq
	s.Check = utils.Mix64(seq)
	x := s.Check
	for i := range s.Payload {
		x = utils.Mix64(x + uint64(i))
		s.Payload[i] = x
	}
}

// valid reports whether s is the sample fill would produce for want.
func valid(want uint64, s *Sample) bool {
	var ref Sample
	fill(want, &ref)
	return *s == ref
}

// bytesOf views a sample's memory for hashing.
func bytesOf(s *Sample) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s)), unsafe.Sizeof(*s))
}

// runScenario performs one producer/consumer run and returns its report.
func runScenario(cfg benchConfig, pair *stats.Pair) report.Report {
	a := allocators[cfg.Allocator]()
	q := queue.New[Sample](cfg.Capacity, queue.WithAllocator(a))
	defer func() {
		q.Dispose()
		if n := a.Live(); n != 0 {
			debug.DropMessage("ALLOC", utils.Itoa(n)+" blocks still live after dispose")
		}
	}()

	rep := report.Report{
		Capacity:     cfg.Capacity,
		Items:        cfg.Items,
		ItemSize:     int(unsafe.Sizeof(Sample{})),
		Footprint:    int(q.Plan().Total),
		Allocator:    cfg.Allocator,
		ProducerCore: cfg.ProducerCore,
		ConsumerCore: cfg.ConsumerCore,
	}

	// Flags are process-wide; a signal that lands between runs must survive
	// the reset.
	control.Reset()
	control.SetCooldown(cfg.Cooldown)
	if interrupted.Load() {
		control.Shutdown()
	}
	stop, hot := control.Flags()
	before := pair.Snapshot()
	sent, recv := sha3.New256(), sha3.New256()

	// Consumer-owned until consumed is closed.
	var (
		expect      uint64
		orderErrors int
	)
	var received atomic.Int64

	consumed := make(chan struct{})
	control.ShutdownWG.Add(1)
	go func() {
		<-consumed
		control.ShutdownWG.Done()
	}()

	start := time.Now()
	rep.Started = start.UnixNano()

	pinned.Consumer(cfg.ConsumerCore, q, stop, hot, func(s *Sample) {
		if s.Seq != expect || !valid(s.Seq, s) {
			orderErrors++
		}
		expect = s.Seq + 1
		recv.Write(bytesOf(s))
		received.Add(1)
	}, &pair.Consumer, consumed)

	fed := make(chan int, 1)
	pinned.Feed(cfg.ProducerCore, q, cfg.Items, func(i int, s *Sample) {
		fill(uint64(i), s)
		sent.Write(bytesOf(s))
	}, stop, &pair.Producer, fed)

	produced := waitForStream(cfg, fed, &received, consumed)
	control.Shutdown()
	<-consumed
	rep.DurationNs = time.Since(start).Nanoseconds()
	if produced < 0 {
		// Stalled with the producer blocked on a full queue; Shutdown
		// released it.
		produced = <-fed
	}

	rep.Counters = pair.Snapshot().Sub(before)
	rep.Received = int(received.Load())
	rep.OrderErrors = orderErrors
	if produced == cfg.Items {
		rep.SentDigest = hex.EncodeToString(sent.Sum(nil))
	}
	rep.RecvDigest = hex.EncodeToString(recv.Sum(nil))
	rep.Verify()
	return rep
}

// waitForStream blocks until the consumer has drained everything the
// producer will send, the consumer has exited on shutdown, or the consumer
// stalls. It returns the producer's count, or -1 if the producer had not
// finished.
func waitForStream(cfg benchConfig, fed <-chan int, received *atomic.Int64, consumed <-chan struct{}) int {
	produced := -1
	last, lastAt := int64(-1), time.Now()
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()

	for {
		if produced < 0 {
			select {
			case produced = <-fed:
			default:
			}
		}
		n := received.Load()
		switch {
		case n == int64(cfg.Items):
			if produced < 0 {
				produced = <-fed
			}
			return produced
		case produced >= 0 && n == int64(produced):
			return produced // producer stopped early, consumer caught up
		}
		select {
		case <-consumed:
			return produced
		default:
		}

		if n != last {
			last, lastAt = n, time.Now()
		} else if time.Since(lastAt) > cfg.Stall {
			debug.DropMessage("STALL", "no progress for "+cfg.Stall.String()+" at "+utils.Itoa(int(n))+" items")
			return produced
		}
		<-tick.C
	}
}
