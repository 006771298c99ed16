package toggl

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/wolkwork/toggl-mcp/internal/telemetry"
)

type countingCaller struct {
	calls int
}

func (c *countingCaller) Get(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error) {
	c.calls++
	return json.RawMessage(`[]`), nil
}

func TestPacerDelegates(t *testing.T) {
	fake := &countingCaller{}
	pacer := NewPacer(fake, 100, nil)

	raw, err := pacer.Get(context.Background(), "http://example.test/me", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(raw) != `[]` {
		t.Errorf("Get() = %s, want delegated payload", raw)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1", fake.calls)
	}
}

func TestPacerSpacesCalls(t *testing.T) {
	fake := &countingCaller{}
	// 20 rps keeps the test fast while still forcing a measurable wait.
	pacer := NewPacer(fake, 20, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := pacer.Get(context.Background(), "http://example.test/me", nil); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	// Burst of one, so the second and third calls each wait ~50ms.
	if elapsed < 80*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 80ms of pacing", elapsed)
	}
	if fake.calls != 3 {
		t.Errorf("calls = %d, want 3", fake.calls)
	}
}

func TestPacerZeroDisables(t *testing.T) {
	fake := &countingCaller{}
	pacer := NewPacer(fake, 0, nil)

	start := time.Now()
	for i := 0; i < 10; i++ {
		if _, err := pacer.Get(context.Background(), "http://example.test/me", nil); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("elapsed = %v, want no pacing", elapsed)
	}
}

func TestPacerCancelledContext(t *testing.T) {
	fake := &countingCaller{}
	pacer := NewPacer(fake, 1, nil)

	// Drain the single token, then cancel before the next wait completes.
	if _, err := pacer.Get(context.Background(), "http://example.test/me", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pacer.Get(ctx, "http://example.test/me", nil); err == nil {
		t.Error("Get() error = nil, want context error")
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1: cancelled wait must not reach upstream", fake.calls)
	}
}

func TestPacerCountsThrottleWaits(t *testing.T) {
	fake := &countingCaller{}
	metrics := telemetry.NewMetricsCollector()
	pacer := NewPacer(fake, 20, metrics)

	for i := 0; i < 3; i++ {
		if _, err := pacer.Get(context.Background(), "http://example.test/me", nil); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	// First call has a token available; the next two wait.
	if got := metrics.CounterValue(telemetry.MetricUpstreamThrottleWaits); got != 2 {
		t.Errorf("throttle waits = %d, want 2", got)
	}
}
