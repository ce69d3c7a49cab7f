// Package slo publishes service level indicators of the HTTP API as gauges.
// A Tracker collects request outcomes between two Flush calls; Flush turns
// them into availability, error rate and latency quantiles.
package slo

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service level objectives of the blog API.
const (
	// AvailabilitySLO is the target share of non 5xx responses in percent.
	AvailabilitySLO = 99.9

	// LatencyP95SLO is the p95 latency target in seconds.
	LatencyP95SLO = 0.200

	// LatencyP99SLO is the p99 latency target in seconds.
	LatencyP99SLO = 0.500

	// ErrorRateSLO is the maximum share of 5xx responses.
	ErrorRateSLO = 0.001
)

// maxSamples caps the latencies kept per window.
const maxSamples = 10000

var (
	SLOAvailability = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_availability_ratio",
		Help: "Availability ratio (0-1) of the last window, target: 0.999",
	})

	SLOLatencyP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p95_seconds",
		Help: "p95 latency in seconds of the last window, target: 0.200",
	})

	SLOLatencyP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_latency_p99_seconds",
		Help: "p99 latency in seconds of the last window, target: 0.500",
	})

	SLOErrorRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slo_error_rate_ratio",
		Help: "5xx ratio (0-1) of the last window, target: 0.001",
	})
)

func UpdateAvailability(ratio float64) { SLOAvailability.Set(ratio) }
func UpdateLatencyP95(seconds float64) { SLOLatencyP95.Set(seconds) }
func UpdateLatencyP99(seconds float64) { SLOLatencyP99.Set(seconds) }
func UpdateErrorRate(ratio float64)    { SLOErrorRate.Set(ratio) }

// Snapshot is the outcome of one window.
type Snapshot struct {
	Requests     int
	Errors       int
	Availability float64
	ErrorRate    float64
	P95          float64
	P99          float64
}

// Tracker accumulates request outcomes. It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	requests  int
	errors    int
	latencies []float64
}

// Default is fed by the HTTP metrics middleware.
var Default = &Tracker{}

// Observe records one response. Statuses of 500 and above count as errors.
func (t *Tracker) Observe(status int, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests++
	if status >= 500 {
		t.errors++
	}
	if len(t.latencies) < maxSamples {
		t.latencies = append(t.latencies, d.Seconds())
	}
}

// Flush publishes the current window to the gauges and starts a new one.
// An empty window leaves the gauges untouched.
func (t *Tracker) Flush() Snapshot {
	t.mu.Lock()
	requests, errs, latencies := t.requests, t.errors, t.latencies
	t.requests, t.errors, t.latencies = 0, 0, nil
	t.mu.Unlock()

	snap := Snapshot{Requests: requests, Errors: errs}
	if requests == 0 {
		return snap
	}

	snap.ErrorRate = float64(errs) / float64(requests)
	snap.Availability = 1 - snap.ErrorRate
	sort.Float64s(latencies)
	snap.P95 = quantile(latencies, 0.95)
	snap.P99 = quantile(latencies, 0.99)

	UpdateAvailability(snap.Availability)
	UpdateErrorRate(snap.ErrorRate)
	UpdateLatencyP95(snap.P95)
	UpdateLatencyP99(snap.P99)
	return snap
}

// quantile uses the nearest rank method on sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	return sorted[max(rank, 0)]
}
