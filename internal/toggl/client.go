// Package toggl implements the upstream HTTP client for the Toggl Track,
// Reports and Webhooks APIs, plus the pacing and retry decorators wrapped
// around it.
package toggl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
)

// Caller issues a single authenticated GET against an upstream URL and
// returns the raw response body. Decorators and test fakes implement the
// same interface so pacing and retry can be layered or disabled freely.
type Caller interface {
	Get(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error)
}

// Client is the concrete Caller. Exactly one HTTP request per Get, no
// retries at this layer; retry policy belongs to the Retrier decorator.
type Client struct {
	apiToken string
	http     *http.Client
	metrics  *telemetry.MetricsCollector
	log      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *telemetry.MetricsCollector) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates an upstream client for the given API token. The token
// is held by the client alone; no other layer sees the credential.
func NewClient(apiToken string, opts ...Option) *Client {
	c := &Client{
		apiToken: apiToken,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues one authenticated GET to rawURL with the given query and
// returns the response body. Failures are mapped onto the typed taxonomy:
// 401/403 auth, 404 not found, 429 rate limited, anything else non-2xx or
// a transport error is an upstream failure.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errortypes.UpstreamFailure(err, "invalid upstream URL").
			WithField("url", rawURL)
	}
	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errortypes.UpstreamFailure(err, "failed to build upstream request")
	}
	// Basic auth: token:api_token
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiToken + ":api_token"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.count(telemetry.MetricUpstreamCalls)

	resp, err := c.http.Do(req)
	if err != nil {
		c.count(telemetry.MetricUpstreamCallsFailure)
		return nil, errortypes.UpstreamFailure(err, "upstream request failed").
			WithField("url", u.Redacted())
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordTime(telemetry.MetricUpstreamResponseTime, time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.count(telemetry.MetricUpstreamCallsFailure)
		return nil, c.statusError(resp, u)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count(telemetry.MetricUpstreamCallsFailure)
		return nil, errortypes.UpstreamFailure(err, "failed to read upstream response").
			WithField("url", u.Redacted())
	}

	c.count(telemetry.MetricUpstreamCallsSuccess)
	c.log.Debug("upstream call complete",
		"path", u.Path, "status", resp.StatusCode, "elapsed", time.Since(start))
	return json.RawMessage(body), nil
}

func (c *Client) statusError(resp *http.Response, u *url.URL) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	base := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errortypes.AuthFailure(base, "upstream rejected credential").
			WithField("path", u.Path)
	case resp.StatusCode == http.StatusNotFound:
		return errortypes.NotFound(base, "upstream resource not found").
			WithField("path", u.Path)
	case resp.StatusCode == http.StatusTooManyRequests:
		c.count(telemetry.MetricUpstreamRateLimited)
		return errortypes.RateLimited(base, "upstream rate limit hit").
			WithField("path", u.Path).
			WithField("retry_after", retryAfter(resp))
	default:
		return errortypes.UpstreamFailure(base, "upstream request failed").
			WithField("path", u.Path).
			WithField("status", resp.StatusCode)
	}
}

// retryAfter extracts the provider's suggested backoff, defaulting to the
// documented one-second minimum interval.
func retryAfter(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}

func (c *Client) count(name string) {
	if c.metrics != nil {
		c.metrics.IncrementCounter(name, 1)
	}
}
