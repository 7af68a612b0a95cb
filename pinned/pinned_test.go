// -----------------------------------------------------------------------------
// pinned_test.go - Consumer and Feed loops
// -----------------------------------------------------------------------------
//
//  Verifies: delivery order, graceful shutdown with and without traffic,
//  hot-window spin, cold back-off then wake-up, producer abort on stop, and
//  counter bookkeeping.
// -----------------------------------------------------------------------------

package pinned

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"ringqueue/control"
	"ringqueue/queue"
	"ringqueue/stats"
)

type frame struct {
	Seq  uint64
	Body [24]byte
}

// launch starts a Consumer on core -1 (unpinned) and returns its flags.
func launch(q *queue.Queue[frame], fn func(*frame), st *stats.Consumer) (stop, hot *uint32, done chan struct{}) {
	stop = new(uint32)
	hot = new(uint32)
	done = make(chan struct{})
	Consumer(-1, q, stop, hot, fn, st, done)
	return
}

func waitDone(t *testing.T, done <-chan struct{}, d time.Duration) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timeout waiting for consumer exit")
	}
}

func TestConsumerDeliversItem(t *testing.T) {
	q := queue.New[frame](8)
	defer q.Dispose()

	var got atomic.Uint64
	stop, hot, done := launch(q, func(f *frame) { got.Store(f.Seq) }, nil)

	atomic.StoreUint32(hot, 1)
	want := frame{Seq: 42}
	if !q.Enqueue(&want) {
		t.Fatal("enqueue failed")
	}
	atomic.StoreUint32(hot, 0)

	deadline := time.Now().Add(time.Second)
	for got.Load() != 42 {
		if time.Now().After(deadline) {
			t.Fatal("callback never ran")
		}
		runtime.Gosched()
	}

	atomic.StoreUint32(stop, 1)
	waitDone(t, done, time.Second)
}

func TestConsumerStopsWithoutWork(t *testing.T) {
	q := queue.New[frame](4)
	defer q.Dispose()

	stop, _, done := launch(q, func(*frame) {}, nil)
	atomic.StoreUint32(stop, 1)
	waitDone(t, done, time.Second)
}

func TestConsumerDrainsBeforeExit(t *testing.T) {
	q := queue.New[frame](64)
	defer q.Dispose()

	for i := 0; i < 64; i++ {
		f := frame{Seq: uint64(i)}
		q.Enqueue(&f)
	}
	var seen atomic.Uint32
	stop, _, done := launch(q, func(*frame) { seen.Add(1) }, nil)
	atomic.StoreUint32(stop, 1)
	waitDone(t, done, time.Second)

	if seen.Load() != 64 {
		t.Fatalf("consumed %d of 64 before exit", seen.Load())
	}
}

func TestConsumerHotWindow(t *testing.T) {
	q := queue.New[frame](4)
	defer q.Dispose()

	var hits atomic.Uint32
	stop, hot, done := launch(q, func(*frame) { hits.Add(1) }, nil)

	atomic.StoreUint32(hot, 1)
	q.Enqueue(&frame{Seq: 9})
	atomic.StoreUint32(hot, 0)

	time.Sleep(50 * time.Millisecond) // well inside hotWindow
	if v := hits.Load(); v != 1 {
		t.Fatalf("callback count %d, want 1", v)
	}
	select {
	case <-done:
		t.Fatal("consumer exited inside hot window")
	default:
	}
	atomic.StoreUint32(stop, 1)
	waitDone(t, done, time.Second)
}

func TestConsumerBackoffThenWake(t *testing.T) {
	saved := hotWindow
	hotWindow = 20 * time.Millisecond
	defer func() { hotWindow = saved }()

	q := queue.New[frame](4)
	defer q.Dispose()

	var hits atomic.Uint32
	stop, _, done := launch(q, func(*frame) { hits.Add(1) }, nil)

	q.Enqueue(&frame{Seq: 7})
	time.Sleep(hotWindow + 50*time.Millisecond) // now in cold spin

	q.Enqueue(&frame{Seq: 8})
	deadline := time.Now().Add(time.Second)
	for hits.Load() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 callbacks, got %d", hits.Load())
		}
		time.Sleep(time.Millisecond)
	}
	atomic.StoreUint32(stop, 1)
	waitDone(t, done, time.Second)
}

func TestFeedToConsumerInOrder(t *testing.T) {
	const n = 50000
	q := queue.New[frame](128)
	defer q.Dispose()

	var pair stats.Pair
	var next uint64
	var bad atomic.Bool
	stop, _, done := launch(q, func(f *frame) {
		if f.Seq != next || f.Body[0] != byte(f.Seq) {
			bad.Store(true)
		}
		next++
	}, &pair.Consumer)

	fed := make(chan int, 1)
	Feed(-1, q, n, func(i int, f *frame) {
		f.Seq = uint64(i)
		f.Body[0] = byte(i)
	}, stop, &pair.Producer, fed)

	if sent := <-fed; sent != n {
		t.Fatalf("Feed sent %d, want %d", sent, n)
	}
	deadline := time.Now().Add(5 * time.Second)
	for pair.Consumer.Dequeued.Load() != n {
		if time.Now().After(deadline) {
			t.Fatalf("consumer stalled at %d", pair.Consumer.Dequeued.Load())
		}
		time.Sleep(time.Millisecond)
	}
	atomic.StoreUint32(stop, 1)
	waitDone(t, done, time.Second)

	if bad.Load() {
		t.Fatal("items delivered out of order or corrupted")
	}
	s := pair.Snapshot()
	if s.Enqueued != n || s.Dequeued != n || s.InFlight() != 0 {
		t.Fatalf("counters %+v", s)
	}
}

func TestFeedAbortsOnStop(t *testing.T) {
	q := queue.New[frame](4)
	defer q.Dispose()

	stop := new(uint32)
	var st stats.Producer
	fed := make(chan int, 1)
	Feed(-1, q, 100, func(i int, f *frame) { f.Seq = uint64(i) }, stop, &st, fed)

	// Nothing consumes, so Feed blocks after four items.
	deadline := time.Now().Add(time.Second)
	for st.Full.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Feed never hit a full queue")
		}
		time.Sleep(time.Millisecond)
	}
	atomic.StoreUint32(stop, 1)

	select {
	case sent := <-fed:
		if sent != 4 {
			t.Fatalf("sent = %d, want 4", sent)
		}
	case <-time.After(time.Second):
		t.Fatal("Feed ignored stop")
	}
	if st.Enqueued.Load() != 4 {
		t.Fatalf("Enqueued = %d, want 4", st.Enqueued.Load())
	}
}

func TestSetAffinityOutOfRangeIsHarmless(t *testing.T) {
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		setAffinity(-1)
		setAffinity(1 << 20)
		close(done)
	}()
	<-done
}

// TestConsumerExpiresIdleHotFlag checks that a consumer spinning on the
// global flags clears hot once the producer has been silent for the
// cooldown, instead of spinning hot until shutdown.
func TestConsumerExpiresIdleHotFlag(t *testing.T) {
	control.Reset()
	defer control.Reset()
	control.SetCooldown(time.Millisecond)

	q := queue.New[frame](8)
	defer q.Dispose()

	stop, hot := control.Flags()
	done := make(chan struct{})
	control.SignalActivity()
	Consumer(-1, q, stop, hot, func(*frame) {}, nil, done)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadUint32(hot) != 0 {
		if time.Now().After(deadline) {
			control.Shutdown()
			<-done
			t.Fatal("hot flag still set long after the cooldown expired")
		}
		time.Sleep(time.Millisecond)
	}

	control.Shutdown()
	waitDone(t, done, time.Second)

	// Fresh activity re-arms the flag and the consumer still delivers.
	var hits atomic.Uint32
	control.Reset()
	control.SetCooldown(time.Hour)
	done = make(chan struct{})
	Consumer(-1, q, stop, hot, func(*frame) { hits.Add(1) }, nil, done)
	control.SignalActivity()
	q.Enqueue(&frame{Seq: 1})
	deadline = time.Now().Add(2 * time.Second)
	for hits.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("item not delivered after re-arming")
		}
		time.Sleep(time.Millisecond)
	}
	if atomic.LoadUint32(hot) == 0 {
		t.Fatal("hot cleared inside a one hour cooldown")
	}
	control.Shutdown()
	waitDone(t, done, time.Second)
}
