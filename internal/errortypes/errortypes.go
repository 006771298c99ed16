// Package errortypes provides the typed failure taxonomy for the Toggl MCP
// server. Every failure that crosses a component boundary is an *AppError
// carrying one of the kinds below; nothing is surfaced as a bare string.
package errortypes

import (
	"errors"
	"fmt"
	"log/slog"
)

// Kind classifies a failure.
type Kind string

// Failure kinds.
const (
	// KindInvalidIdentifier marks a resource URI that cannot be parsed
	// into the expected shape. Caller error, never retried.
	KindInvalidIdentifier Kind = "invalid_identifier"

	// KindInvalidArguments marks a tool invocation with missing or
	// inconsistent arguments. Caller error, surfaced before any upstream
	// call is issued.
	KindInvalidArguments Kind = "invalid_arguments"

	// KindNotFound marks an unknown resource scheme, sub-collection, or an
	// id that does not exist upstream.
	KindNotFound Kind = "not_found"

	// KindAuthFailure marks an upstream 401/403. Fatal for the request; if
	// it persists across requests the credential itself is bad.
	KindAuthFailure Kind = "auth_failure"

	// KindRateLimited marks an upstream 429. Carries a suggested backoff.
	KindRateLimited Kind = "rate_limited"

	// KindUpstreamFailure marks an upstream 5xx or a transport error. May
	// be retried by the client's retry decorator with bounded attempts.
	KindUpstreamFailure Kind = "upstream_failure"

	// KindMalformedPayload marks a normalization failure: a required field
	// absent or type-incompatible. Indicates a contract mismatch with
	// upstream; never retried.
	KindMalformedPayload Kind = "malformed_payload"

	// KindConfig marks a startup-time configuration problem, such as a
	// missing API token.
	KindConfig Kind = "config"
)

// AppError is a failure with a kind and structured context.
type AppError struct {
	Err     error
	Kind    Kind
	Message string
	Fields  map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Message != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap supports errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField attaches a context field to the error.
func (e *AppError) WithField(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func newAppError(kind Kind, err error, message string) *AppError {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &AppError{
		Err:     err,
		Kind:    kind,
		Message: message,
		Fields:  make(map[string]any),
	}
}

// InvalidIdentifier creates an unparsable-resource-URI error.
func InvalidIdentifier(err error, message string) *AppError {
	return newAppError(KindInvalidIdentifier, err, message)
}

// InvalidArguments creates a bad-tool-arguments error.
func InvalidArguments(err error, message string) *AppError {
	return newAppError(KindInvalidArguments, err, message)
}

// NotFound creates an unknown-resource error.
func NotFound(err error, message string) *AppError {
	return newAppError(KindNotFound, err, message)
}

// AuthFailure creates a credential-rejected error.
func AuthFailure(err error, message string) *AppError {
	return newAppError(KindAuthFailure, err, message)
}

// RateLimited creates a throttled-by-upstream error.
func RateLimited(err error, message string) *AppError {
	return newAppError(KindRateLimited, err, message)
}

// UpstreamFailure creates an upstream 5xx or transport error.
func UpstreamFailure(err error, message string) *AppError {
	return newAppError(KindUpstreamFailure, err, message)
}

// MalformedPayload creates an upstream-contract-mismatch error.
func MalformedPayload(err error, message string) *AppError {
	return newAppError(KindMalformedPayload, err, message)
}

// ConfigError creates a startup configuration error.
func ConfigError(err error, message string) *AppError {
	return newAppError(KindConfig, err, message)
}

// KindOf returns the failure kind of err, or the empty Kind for errors
// that did not originate in this package.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsInvalidIdentifier reports whether err is an invalid-identifier failure.
func IsInvalidIdentifier(err error) bool { return KindOf(err) == KindInvalidIdentifier }

// IsInvalidArguments reports whether err is an invalid-arguments failure.
func IsInvalidArguments(err error) bool { return KindOf(err) == KindInvalidArguments }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsAuthFailure reports whether err is an auth failure.
func IsAuthFailure(err error) bool { return KindOf(err) == KindAuthFailure }

// IsRateLimited reports whether err is a rate-limited failure.
func IsRateLimited(err error) bool { return KindOf(err) == KindRateLimited }

// IsUpstreamFailure reports whether err is an upstream failure.
func IsUpstreamFailure(err error) bool { return KindOf(err) == KindUpstreamFailure }

// IsMalformedPayload reports whether err is a malformed-payload failure.
func IsMalformedPayload(err error) bool { return KindOf(err) == KindMalformedPayload }

// Retryable reports whether a failure of this kind may be retried by the
// upstream client's retry decorator. Caller errors, not-found, auth and
// malformed-payload failures never self-heal.
func Retryable(err error) bool {
	return KindOf(err) == KindUpstreamFailure
}

// LogError logs err through the provided slog.Logger (or slog.Default when
// nil), including the kind and any attached fields.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		args := []any{
			"kind", string(appErr.Kind),
			"original_error", appErr.Err.Error(),
		}
		for k, v := range appErr.Fields {
			args = append(args, k, v)
		}
		logger.Error(appErr.Message, args...)
		return
	}
	logger.Error(err.Error(), "error", err)
}
