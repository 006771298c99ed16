package errortypes

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "invalid identifier",
			err:  InvalidIdentifier(errors.New("bad uri"), "unparsable"),
			want: KindInvalidIdentifier,
		},
		{
			name: "invalid arguments",
			err:  InvalidArguments(errors.New("missing arg"), "validation failed"),
			want: KindInvalidArguments,
		},
		{
			name: "not found",
			err:  NotFound(errors.New("no such workspace"), "missing"),
			want: KindNotFound,
		},
		{
			name: "auth failure",
			err:  AuthFailure(errors.New("401"), "rejected"),
			want: KindAuthFailure,
		},
		{
			name: "rate limited",
			err:  RateLimited(errors.New("429"), "throttled"),
			want: KindRateLimited,
		},
		{
			name: "upstream failure",
			err:  UpstreamFailure(errors.New("500"), "server error"),
			want: KindUpstreamFailure,
		},
		{
			name: "malformed payload",
			err:  MalformedPayload(errors.New("missing id"), "bad shape"),
			want: KindMalformedPayload,
		},
		{
			name: "wrapped app error",
			err:  fmt.Errorf("context: %w", NotFound(errors.New("gone"), "missing")),
			want: KindNotFound,
		},
		{
			name: "plain error",
			err:  errors.New("plain"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	notFound := NotFound(errors.New("x"), "missing")
	if !IsNotFound(notFound) {
		t.Error("IsNotFound() = false for a not-found error")
	}
	if IsRateLimited(notFound) {
		t.Error("IsRateLimited() = true for a not-found error")
	}
	if !IsMalformedPayload(MalformedPayload(nil, "bad")) {
		t.Error("IsMalformedPayload() = false for a malformed-payload error")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "upstream failure retries", err: UpstreamFailure(errors.New("503"), "down"), want: true},
		{name: "rate limited does not retry by default", err: RateLimited(errors.New("429"), "slow down"), want: false},
		{name: "auth failure never retries", err: AuthFailure(errors.New("401"), "bad token"), want: false},
		{name: "malformed payload never retries", err: MalformedPayload(errors.New("shape"), "bad"), want: false},
		{name: "caller error never retries", err: InvalidArguments(errors.New("arg"), "bad"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithField(t *testing.T) {
	err := UpstreamFailure(errors.New("boom"), "call failed").
		WithField("path", "/api/v9/me").
		WithField("status", 502)

	if err.Fields["path"] != "/api/v9/me" {
		t.Errorf("Fields[path] = %v, want /api/v9/me", err.Fields["path"])
	}
	if err.Fields["status"] != 502 {
		t.Errorf("Fields[status] = %v, want 502", err.Fields["status"])
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound(errors.New("no workspace 42"), "upstream resource not found")
	want := "upstream resource not found: no workspace 42"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As failed for *AppError")
	}
	if !errors.Is(err, appErr.Err) {
		t.Error("errors.Is failed to match the wrapped error")
	}
}
