package pinned

import (
	"runtime"
	"sync/atomic"

	"ringqueue/control"
	"ringqueue/queue"
	"ringqueue/stats"
)

// signalEvery is how many accepted items pass between hot-flag refreshes.
const signalEvery = 1024

// Feed enqueues n items built by gen from a dedicated, core-pinned OS thread.
// A full queue is retried with the cold-spin policy. If *stop is set while
// waiting, Feed gives up early. The number of items actually enqueued is
// sent on done. st may be nil.
func Feed[T any](
	core int,
	q *queue.Queue[T],
	n int,
	gen func(i int, v *T),
	stop *uint32,
	st *stats.Producer,
	done chan<- int,
) {
	go func() {
		runtime.LockOSThread()
		setAffinity(core)

		sent := 0
		defer func() {
			runtime.UnlockOSThread()
			done <- sent
		}()

		var v T
		for ; sent < n; sent++ {
			gen(sent, &v)
			if sent%signalEvery == 0 {
				control.SignalActivity()
			}

			miss := 0
			for !q.Enqueue(&v) {
				if st != nil {
					st.Full.Add(1)
				}
				if atomic.LoadUint32(stop) != 0 {
					return
				}
				if miss++; miss >= spinBudget {
					miss = 0
					runtime.Gosched()
				}
				cpuRelax()
			}
			if st != nil {
				st.Enqueued.Add(1)
			}
		}
	}()
}
