// Package telemetry provides in-process metrics collection for monitoring
// upstream API usage and server behavior.
package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// MetricsCollector is a thread-safe collector of counters, gauges and
// timers. A single instance is shared by the upstream client decorators
// and the request handlers.
type MetricsCollector struct {
	counters   map[string]int64
	gauges     map[string]float64
	timers     map[string][]time.Duration
	latestTime map[string]time.Time
	mu         sync.RWMutex
}

// Metric names for the upstream client and its decorators.
const (
	// Upstream call counts.
	MetricUpstreamCalls        = "upstream.calls"
	MetricUpstreamCallsSuccess = "upstream.calls.success"
	MetricUpstreamCallsFailure = "upstream.calls.failure"

	// Decorator activity.
	MetricUpstreamRetries       = "upstream.retries"
	MetricUpstreamThrottleWaits = "upstream.throttle_waits"
	MetricUpstreamRateLimited   = "upstream.rate_limited"

	// Request surface.
	MetricResourceReads = "server.resource_reads"
	MetricToolCalls     = "server.tool_calls"

	// Response time per upstream request.
	MetricUpstreamResponseTime = "upstream.response_time"
)

// NewMetricsCollector creates an empty MetricsCollector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		timers:     make(map[string][]time.Duration),
		latestTime: make(map[string]time.Time),
	}
}

// IncrementCounter increments a named counter by amount.
func (m *MetricsCollector) IncrementCounter(name string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += amount
}

// CounterValue returns the current value of a named counter.
func (m *MetricsCollector) CounterValue(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// SetGauge sets a named gauge.
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// GaugeValue returns the current value of a named gauge.
func (m *MetricsCollector) GaugeValue(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[name]
}

// RecordTime records a duration sample against a named timer.
func (m *MetricsCollector) RecordTime(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers[name] = append(m.timers[name], d)
	m.latestTime[name] = time.Now()
}

// AverageTime returns the mean of all samples recorded for a timer, or
// zero when no samples exist.
func (m *MetricsCollector) AverageTime(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	samples := m.timers[name]
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

// Snapshot returns a flat map of all current metric values, suitable for
// logging on shutdown.
func (m *MetricsCollector) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.counters)+len(m.gauges)+len(m.timers))
	for name, v := range m.counters {
		out[name] = fmt.Sprintf("%d", v)
	}
	for name, v := range m.gauges {
		out[name] = fmt.Sprintf("%g", v)
	}
	for name, samples := range m.timers {
		if len(samples) == 0 {
			continue
		}
		var total time.Duration
		for _, d := range samples {
			total += d
		}
		out[name+".avg"] = (total / time.Duration(len(samples))).String()
		out[name+".count"] = fmt.Sprintf("%d", len(samples))
	}
	return out
}

// Reset clears all collected metrics.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int64)
	m.gauges = make(map[string]float64)
	m.timers = make(map[string][]time.Duration)
	m.latestTime = make(map[string]time.Time)
}
