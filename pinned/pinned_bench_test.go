// ============================================================================
// PINNED LOOP BENCHMARKS
// ============================================================================
//
// Benchmark categories:
//   - Throughput: Feed → Consumer across two locked threads
//   - Shutdown latency: stop flag to done close with an idle queue

package pinned

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ringqueue/queue"
	"ringqueue/stats"
)

func BenchmarkFeedToConsumer(b *testing.B) {
	for _, capacity := range []int{64, 1024, 4096} {
		b.Run(fmt.Sprintf("capacity_%d", capacity), func(b *testing.B) {
			q := queue.New[frame](capacity)
			defer q.Dispose()

			var pair stats.Pair
			var seen atomic.Int64
			stop, hot := new(uint32), new(uint32)
			done := make(chan struct{})
			Consumer(-1, q, stop, hot, func(*frame) { seen.Add(1) }, &pair.Consumer, done)

			fed := make(chan int, 1)
			b.ReportAllocs()
			b.ResetTimer()
			Feed(-1, q, b.N, func(i int, f *frame) { f.Seq = uint64(i) }, stop, &pair.Producer, fed)
			<-fed
			for seen.Load() != int64(b.N) {
				time.Sleep(10 * time.Microsecond)
			}
			b.StopTimer()

			atomic.StoreUint32(stop, 1)
			<-done
			s := pair.Snapshot()
			b.ReportMetric(float64(s.Full)/float64(b.N), "full/op")
		})
	}
}

func BenchmarkConsumerShutdown(b *testing.B) {
	q := queue.New[frame](8)
	defer q.Dispose()

	for i := 0; i < b.N; i++ {
		stop, hot := new(uint32), new(uint32)
		done := make(chan struct{})
		Consumer(-1, q, stop, hot, func(*frame) {}, nil, done)
		atomic.StoreUint32(stop, 1)
		<-done
	}
}
