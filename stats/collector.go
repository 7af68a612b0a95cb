package stats

import "github.com/prometheus/client_golang/prometheus"

// Collector exports a Pair as prometheus counters plus an occupancy gauge.
type Collector struct {
	pair  *Pair
	depth func() int

	enqueued *prometheus.Desc
	full     *prometheus.Desc
	dequeued *prometheus.Desc
	empty    *prometheus.Desc
	occupied *prometheus.Desc
}

// NewCollector describes pair under namespace. depth may be nil; when set it
// reports the queue's Len on every scrape.
func NewCollector(namespace string, labels prometheus.Labels, pair *Pair, depth func() int) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, labels)
	}
	return &Collector{
		pair:     pair,
		depth:    depth,
		enqueued: desc("enqueued_total", "Items accepted by Enqueue."),
		full:     desc("enqueue_full_total", "Enqueue attempts rejected because the queue was full."),
		dequeued: desc("dequeued_total", "Items delivered by Dequeue."),
		empty:    desc("dequeue_empty_total", "Dequeue polls that found the queue empty."),
		occupied: desc("occupancy", "Approximate number of items resident in the queue."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.enqueued
	ch <- c.full
	ch <- c.dequeued
	ch <- c.empty
	if c.depth != nil {
		ch <- c.occupied
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.pair.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.enqueued, prometheus.CounterValue, float64(s.Enqueued))
	ch <- prometheus.MustNewConstMetric(c.full, prometheus.CounterValue, float64(s.Full))
	ch <- prometheus.MustNewConstMetric(c.dequeued, prometheus.CounterValue, float64(s.Dequeued))
	ch <- prometheus.MustNewConstMetric(c.empty, prometheus.CounterValue, float64(s.Empty))
	if c.depth != nil {
		ch <- prometheus.MustNewConstMetric(c.occupied, prometheus.GaugeValue, float64(c.depth()))
	}
}
