package toggl

import (
	"context"
	"encoding/json"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/wolkwork/toggl-mcp/internal/telemetry"
)

// Pacer serializes calls through the wrapped Caller to stay under the
// provider's per-credential rate limit (one request per second). It wraps
// rather than embeds so tests can run against the bare client.
type Pacer struct {
	next    Caller
	limiter *rate.Limiter
	metrics *telemetry.MetricsCollector
}

// NewPacer wraps next with a token-bucket limiter at rps requests per
// second and a burst of one. An rps of zero disables pacing.
func NewPacer(next Caller, rps float64, metrics *telemetry.MetricsCollector) *Pacer {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Pacer{next: next, limiter: limiter, metrics: metrics}
}

// Get waits for the limiter, then delegates. A cancelled context aborts
// the wait and propagates the context error.
func (p *Pacer) Get(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error) {
	if p.limiter != nil {
		if p.limiter.Tokens() < 1 && p.metrics != nil {
			p.metrics.IncrementCounter(telemetry.MetricUpstreamThrottleWaits, 1)
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return p.next.Get(ctx, rawURL, query)
}
