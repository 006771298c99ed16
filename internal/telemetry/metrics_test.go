package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	m := NewMetricsCollector()

	m.IncrementCounter(MetricUpstreamCalls, 1)
	m.IncrementCounter(MetricUpstreamCalls, 2)

	if got := m.CounterValue(MetricUpstreamCalls); got != 3 {
		t.Errorf("CounterValue = %d, want 3", got)
	}
	if got := m.CounterValue("never.touched"); got != 0 {
		t.Errorf("CounterValue(untouched) = %d, want 0", got)
	}
}

func TestGauges(t *testing.T) {
	m := NewMetricsCollector()

	m.SetGauge("pool.size", 4)
	m.SetGauge("pool.size", 8)

	if got := m.GaugeValue("pool.size"); got != 8 {
		t.Errorf("GaugeValue = %v, want 8", got)
	}
}

func TestAverageTime(t *testing.T) {
	m := NewMetricsCollector()

	if got := m.AverageTime(MetricUpstreamResponseTime); got != 0 {
		t.Errorf("AverageTime(empty) = %v, want 0", got)
	}

	m.RecordTime(MetricUpstreamResponseTime, 100*time.Millisecond)
	m.RecordTime(MetricUpstreamResponseTime, 300*time.Millisecond)

	if got := m.AverageTime(MetricUpstreamResponseTime); got != 200*time.Millisecond {
		t.Errorf("AverageTime = %v, want 200ms", got)
	}
}

func TestSnapshotAndReset(t *testing.T) {
	m := NewMetricsCollector()
	m.IncrementCounter(MetricToolCalls, 5)
	m.RecordTime(MetricUpstreamResponseTime, 50*time.Millisecond)

	snap := m.Snapshot()
	if snap[MetricToolCalls] != "5" {
		t.Errorf("snapshot[%s] = %q, want 5", MetricToolCalls, snap[MetricToolCalls])
	}
	if snap[MetricUpstreamResponseTime+".count"] != "1" {
		t.Errorf("snapshot timer count = %q, want 1", snap[MetricUpstreamResponseTime+".count"])
	}

	m.Reset()
	if got := m.CounterValue(MetricToolCalls); got != 0 {
		t.Errorf("CounterValue after Reset = %d, want 0", got)
	}
	if len(m.Snapshot()) != 0 {
		t.Errorf("Snapshot after Reset = %v, want empty", m.Snapshot())
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncrementCounter(MetricUpstreamCalls, 1)
				m.CounterValue(MetricUpstreamCalls)
			}
		}()
	}
	wg.Wait()

	if got := m.CounterValue(MetricUpstreamCalls); got != 1000 {
		t.Errorf("CounterValue = %d, want 1000", got)
	}
}
