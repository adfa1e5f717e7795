package runner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// latency bounds in microseconds: 1us to 60s
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics aggregates request latencies for one run.
type Metrics struct {
	mu sync.Mutex

	totalRequests   atomic.Int64
	successRequests atomic.Int64
	errorRequests   atomic.Int64

	// latency histogram in microseconds
	histogram *hdrhistogram.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

// Record counts one request. Latency is only sampled for requests that
// produced a response.
func (m *Metrics) Record(duration time.Duration, err error) {
	m.totalRequests.Add(1)

	if err != nil {
		m.errorRequests.Add(1)
		return
	}
	m.successRequests.Add(1)

	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	m.mu.Lock()
	_ = m.histogram.RecordValue(latencyUs)
	m.mu.Unlock()
}

// Summary is a latency report over every request of a run.
type Summary struct {
	TotalRequests int64
	SuccessCount  int64
	ErrorCount    int64

	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

func (m *Metrics) Summary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Summary{
		TotalRequests: m.totalRequests.Load(),
		SuccessCount:  m.successRequests.Load(),
		ErrorCount:    m.errorRequests.Load(),
	}
	if m.histogram.TotalCount() == 0 {
		return s
	}

	s.P50 = usec(m.histogram.ValueAtQuantile(50))
	s.P95 = usec(m.histogram.ValueAtQuantile(95))
	s.P99 = usec(m.histogram.ValueAtQuantile(99))
	s.Min = usec(m.histogram.Min())
	s.Max = usec(m.histogram.Max())
	s.Mean = time.Duration(m.histogram.Mean() * float64(time.Microsecond))
	return s
}

func usec(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
