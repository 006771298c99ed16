package toggl

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
)

// Retrier retries upstream failures with bounded exponential backoff.
// Caller errors, not-found, auth failures and malformed payloads are never
// retried; the final failure kind is propagated unchanged. Rate-limited
// responses are retried only when explicitly enabled, since the default
// contract is to surface them with the provider's backoff hint.
type Retrier struct {
	next            Caller
	maxRetries      uint64
	initialInterval time.Duration
	retryRateLimit  bool
	metrics         *telemetry.MetricsCollector
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithRetryRateLimited makes 429 responses retryable after the provider's
// minimum interval.
func WithRetryRateLimited() RetrierOption {
	return func(r *Retrier) { r.retryRateLimit = true }
}

// WithInitialInterval overrides the first backoff interval. Tests use this
// to avoid real waits.
func WithInitialInterval(d time.Duration) RetrierOption {
	return func(r *Retrier) { r.initialInterval = d }
}

// WithRetrierMetrics attaches a metrics collector.
func WithRetrierMetrics(m *telemetry.MetricsCollector) RetrierOption {
	return func(r *Retrier) { r.metrics = m }
}

// NewRetrier wraps next with up to maxRetries retry attempts.
// A maxRetries of zero returns calls unchanged after the first failure.
func NewRetrier(next Caller, maxRetries int, opts ...RetrierOption) *Retrier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	r := &Retrier{
		next:            next,
		maxRetries:      uint64(maxRetries),
		initialInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get delegates to the wrapped Caller, retrying retryable failures.
func (r *Retrier) Get(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval

	var attempts uint64
	operation := func() (json.RawMessage, error) {
		raw, err := r.next.Get(ctx, rawURL, query)
		if err == nil {
			return raw, nil
		}
		if !r.retryable(err) {
			return nil, backoff.Permanent(err)
		}
		attempts++
		if r.metrics != nil {
			r.metrics.IncrementCounter(telemetry.MetricUpstreamRetries, 1)
		}
		return nil, err
	}

	return backoff.RetryWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx))
}

func (r *Retrier) retryable(err error) bool {
	if errortypes.Retryable(err) {
		return true
	}
	return r.retryRateLimit && errortypes.IsRateLimited(err)
}
