package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds in microseconds: 1us to 10m.
const (
	minLatencyUs = 1
	maxLatencyUs = 600_000_000
)

// LatencyStats summarizes the response times of the requests sent in a run.
type LatencyStats struct {
	Count int64
	Min   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

type latencyRecorder struct {
	histogram *hdrhistogram.Histogram
}

func newLatencyRecorder() *latencyRecorder {
	return &latencyRecorder{histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)}
}

func (l *latencyRecorder) record(d time.Duration) {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	_ = l.histogram.RecordValue(us)
}

// stats returns nil when nothing was recorded.
func (l *latencyRecorder) stats() *LatencyStats {
	h := l.histogram
	if h.TotalCount() == 0 {
		return nil
	}
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return &LatencyStats{
		Count: h.TotalCount(),
		Min:   us(h.Min()),
		Mean:  time.Duration(h.Mean() * float64(time.Microsecond)),
		P50:   us(h.ValueAtQuantile(50)),
		P95:   us(h.ValueAtQuantile(95)),
		P99:   us(h.ValueAtQuantile(99)),
		Max:   us(h.Max()),
	}
}
