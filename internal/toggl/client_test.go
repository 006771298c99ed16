package toggl

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
)

func TestClientAuthHeader(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	client := NewClient("secret-token")
	if _, err := client.Get(context.Background(), upstream.URL+"/me", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("secret-token:api_token"))
	if gotAuth != want {
		t.Errorf("Authorization = %q, want %q", gotAuth, want)
	}
}

func TestClientQueryParams(t *testing.T) {
	var gotQuery url.Values
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	client := NewClient("token")
	query := url.Values{}
	query.Set("active", "true")
	query.Set("workspace_id", "42")

	if _, err := client.Get(context.Background(), upstream.URL+"/projects", query); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotQuery.Get("active") != "true" || gotQuery.Get("workspace_id") != "42" {
		t.Errorf("query = %v, want active=true workspace_id=42", gotQuery)
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
		kind   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, check: errortypes.IsAuthFailure, kind: "auth"},
		{name: "forbidden", status: http.StatusForbidden, check: errortypes.IsAuthFailure, kind: "auth"},
		{name: "not found", status: http.StatusNotFound, check: errortypes.IsNotFound, kind: "not found"},
		{name: "rate limited", status: http.StatusTooManyRequests, check: errortypes.IsRateLimited, kind: "rate limited"},
		{name: "server error", status: http.StatusInternalServerError, check: errortypes.IsUpstreamFailure, kind: "upstream"},
		{name: "bad gateway", status: http.StatusBadGateway, check: errortypes.IsUpstreamFailure, kind: "upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer upstream.Close()

			client := NewClient("token")
			_, err := client.Get(context.Background(), upstream.URL+"/x", nil)
			if err == nil {
				t.Fatal("Get() error = nil, want typed failure")
			}
			if !tt.check(err) {
				t.Errorf("Get() error = %v, want %s failure", err, tt.kind)
			}
		})
	}
}

func TestClientRateLimitedCarriesBackoffHint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	client := NewClient("token")
	_, err := client.Get(context.Background(), upstream.URL+"/x", nil)

	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Get() error = %v, want *AppError", err)
	}
	if appErr.Fields["retry_after"] != 3*time.Second {
		t.Errorf("retry_after = %v, want 3s", appErr.Fields["retry_after"])
	}
}

func TestClientTransportError(t *testing.T) {
	client := NewClient("token")
	// Nothing listens on this address.
	_, err := client.Get(context.Background(), "http://127.0.0.1:1/x", nil)
	if !errortypes.IsUpstreamFailure(err) {
		t.Errorf("Get() error = %v, want upstream failure", err)
	}
}

func TestClientMetrics(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	metrics := telemetry.NewMetricsCollector()
	client := NewClient("token", WithMetrics(metrics))

	if _, err := client.Get(context.Background(), upstream.URL+"/me", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := metrics.CounterValue(telemetry.MetricUpstreamCalls); got != 1 {
		t.Errorf("calls counter = %d, want 1", got)
	}
	if got := metrics.CounterValue(telemetry.MetricUpstreamCallsSuccess); got != 1 {
		t.Errorf("success counter = %d, want 1", got)
	}
}

func TestEndpoints(t *testing.T) {
	endpoints := Endpoints{
		Track:    "https://api.example.test/api/v9/",
		Reports:  "https://api.example.test/reports/api/v2",
		Webhooks: "https://example.test/webhooks/api/v1",
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "track trims trailing slash",
			got:  endpoints.TrackURL("workspaces", int64(42), "projects"),
			want: "https://api.example.test/api/v9/workspaces/42/projects",
		},
		{
			name: "reports",
			got:  endpoints.ReportsURL("weekly"),
			want: "https://api.example.test/reports/api/v2/weekly",
		},
		{
			name: "webhooks",
			got:  endpoints.WebhooksURL("subscriptions", int64(42)),
			want: "https://example.test/webhooks/api/v1/subscriptions/42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
