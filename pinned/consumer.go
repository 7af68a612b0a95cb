// consumer.go
//
// Low-latency consumer loop on a dedicated, core-pinned OS thread.
//
//   • Hot spin (no relax) while the hot flag is set or an item arrived
//     within hotWindow.
//   • Cold spin otherwise: cpuRelax every miss, yield the P after
//     spinBudget misses.
//   • Every spinBudget misses, hot or cold, polls the global cooldown so an
//     idle producer's hot flag expires.
//   • Exits once *stop is set and the queue reads empty, then closes done.
//
// hot flag contract:
//     Producer             Consumer
//     --------             ------------------------------
//     Store 1  ─────────▶  read (wake / stay hot-spin)
//     ...push items…
//     (optionally) Store 0  ◀─ cleared only via control.PollCooldown

package pinned

import (
	"runtime"
	"sync/atomic"
	"time"

	"ringqueue/constants"
	"ringqueue/control"
	"ringqueue/queue"
	"ringqueue/stats"
)

var (
	spinBudget = constants.SpinBudget
	hotWindow  = constants.HotWindow
)

// Consumer drains q into fn until *stop is set. st may be nil.
func Consumer[T any](
	core int,
	q *queue.Queue[T],
	stop, hot *uint32,
	fn func(*T),
	st *stats.Consumer,
	done chan<- struct{},
) {
	go func() {
		runtime.LockOSThread()
		setAffinity(core)
		defer func() {
			runtime.UnlockOSThread()
			close(done)
		}()

		var v T
		last := time.Now()
		miss := 0

		for {
			if q.Dequeue(&v) {
				fn(&v)
				if st != nil {
					st.Dequeued.Add(1)
				}
				last, miss = time.Now(), 0
				continue
			}
			if st != nil {
				st.Empty.Add(1)
			}

			if atomic.LoadUint32(stop) != 0 {
				return
			}

			budget := false
			if miss++; miss >= spinBudget {
				miss, budget = 0, true
				control.PollCooldown()
			}

			if atomic.LoadUint32(hot) != 0 || time.Since(last) <= hotWindow {
				continue
			}

			if budget {
				runtime.Gosched()
			}
			cpuRelax()
		}
	}()
}
