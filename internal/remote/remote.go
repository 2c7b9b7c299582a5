// Package remote holds the plumbing shared by every outbound integration:
// a single error shape with a coarse failure kind, and the HTTP client with
// the fixed per-call network timeout.
package remote

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorKind buckets an external call failure. Callers never branch on
// vendor-specific error bodies; they branch on the kind.
type ErrorKind string

const (
	KindNetwork        ErrorKind = "network"
	KindAuth           ErrorKind = "auth"
	KindRateLimited    ErrorKind = "rate_limited"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindUnknown        ErrorKind = "unknown"
)

// Error is the result type for a failed external call.
type Error struct {
	Kind    ErrorKind
	Service string // "airtable", "mailchimp", "sheets", "smtp", "telegram"
	Op      string // "upsert_record", "update_status", ...
	Status  int    // HTTP status when applicable, else 0
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", e.Service, e.Op, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from an error chain; non-remote errors
// report KindUnknown.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// KindFromStatus classifies an HTTP response status.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 400 && status < 500:
		return KindInvalidRequest
	default:
		return KindUnknown
	}
}

// ErrNotConfigured marks an integration whose credentials were absent at
// startup. Calls short-circuit with this error instead of crashing; the
// dispatcher logs it and moves on.
var ErrNotConfigured = errors.New("integration not configured")

// NotConfigured builds the short-circuit error for a disabled integration,
// naming the credentials that were missing.
func NotConfigured(service string, missing ...string) error {
	if len(missing) == 0 {
		return fmt.Errorf("%s: %w", service, ErrNotConfigured)
	}
	return fmt.Errorf("%s: %w: missing %s", service, ErrNotConfigured, strings.Join(missing, ", "))
}

// NewHTTPClient returns the client used for all vendor REST calls. The
// timeout is configuration, not behavior: no retries, no backoff. Failed
// calls are logged by the caller and dropped.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
