// report.go
//
// Run reports for ringbench: what was configured, what the counters saw,
// and whether both ends of the stream agreed.

package report

import (
	"errors"

	"github.com/sugawarayuuta/sonnet"

	"ringqueue/stats"
)

// ErrEmpty is returned by Decode for an empty document.
var ErrEmpty = errors.New("report: empty document")

// Report describes one scenario run.
type Report struct {
	Started      int64          `json:"started_unix_ns"`
	DurationNs   int64          `json:"duration_ns"`
	Capacity     int            `json:"capacity"`
	Items        int            `json:"items"`
	ItemSize     int            `json:"item_size"`
	Footprint    int            `json:"footprint_bytes"`
	Allocator    string         `json:"allocator"`
	ProducerCore int            `json:"producer_core"`
	ConsumerCore int            `json:"consumer_core"`
	Counters     stats.Snapshot `json:"counters"`
	Received     int            `json:"received"`
	OrderErrors  int            `json:"order_errors"`
	SentDigest   string         `json:"sent_digest"`
	RecvDigest   string         `json:"recv_digest"`
	OK           bool           `json:"ok"`
}

// Verify sets OK from the delivery facts and returns it.
func (r *Report) Verify() bool {
	r.OK = r.Received == r.Items &&
		r.OrderErrors == 0 &&
		r.SentDigest != "" &&
		r.SentDigest == r.RecvDigest
	return r.OK
}

// ItemsPerSecond is the end-to-end throughput, zero for an unfinished run.
func (r *Report) ItemsPerSecond() float64 {
	if r.DurationNs <= 0 {
		return 0
	}
	return float64(r.Received) / (float64(r.DurationNs) / 1e9)
}

// Encode renders r as JSON.
func Encode(r *Report) ([]byte, error) {
	return sonnet.Marshal(r)
}

// Decode parses a document produced by Encode.
func Decode(b []byte) (Report, error) {
	var r Report
	if len(b) == 0 {
		return r, ErrEmpty
	}
	if err := sonnet.Unmarshal(b, &r); err != nil {
		return r, err
	}
	return r, nil
}
