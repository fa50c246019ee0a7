package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind buckets upstream failures so the orchestrator can decide between
// skipping one query, abandoning one provider, or failing the whole request.
type ErrorKind string

const (
	// KindQuota: provider-reported rate/quota exhaustion (429, quotaExceeded).
	KindQuota ErrorKind = "quota"
	// KindAuth: missing or rejected credential; remediation differs from quota.
	KindAuth ErrorKind = "auth"
	// KindNotFound: a specific channel/profile/video id did not resolve.
	KindNotFound ErrorKind = "not_found"
	// KindTransient: network errors and timeouts; the query simply failed.
	KindTransient ErrorKind = "transient"
	// KindUpstream: any other upstream rejection.
	KindUpstream ErrorKind = "upstream"
)

// ProviderError carries a classified upstream failure. Adapters classify once
// at their boundary; everything above matches with errors.As.
type ProviderError struct {
	Platform string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Platform, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(platform string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Platform: platform, Kind: kind, Err: err}
}

// KindOf extracts the classification, defaulting to transient for plain
// network errors and upstream for anything else.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	return KindUpstream
}

// FatalForProvider reports whether remaining queries to the same provider
// should be skipped: a dead credential or an exhausted quota will not recover
// within this request.
func FatalForProvider(err error) bool {
	kind := KindOf(err)
	return kind == KindQuota || kind == KindAuth
}

func IsQuota(err error) bool    { return KindOf(err) == KindQuota }
func IsAuth(err error) bool     { return KindOf(err) == KindAuth }
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// ClassifyHTTP maps an upstream HTTP status (plus a snippet of the response
// body for APIs that overload 403) onto the taxonomy.
func ClassifyHTTP(platform string, status int, body string) *ProviderError {
	snippet := strings.TrimSpace(body)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	err := fmt.Errorf("provider HTTP %d: %s", status, snippet)
	lower := strings.ToLower(snippet)

	switch {
	case status == http.StatusTooManyRequests:
		return NewProviderError(platform, KindQuota, err)
	case status == http.StatusForbidden &&
		(strings.Contains(lower, "quota") || strings.Contains(lower, "ratelimit") || strings.Contains(lower, "rate limit")):
		return NewProviderError(platform, KindQuota, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewProviderError(platform, KindAuth, err)
	case status == http.StatusBadRequest && strings.Contains(lower, "key"):
		return NewProviderError(platform, KindAuth, err)
	case status == http.StatusNotFound:
		return NewProviderError(platform, KindNotFound, err)
	case status >= 500:
		return NewProviderError(platform, KindTransient, err)
	default:
		return NewProviderError(platform, KindUpstream, err)
	}
}

// WrapTransport classifies client-side failures from http.Client.Do.
func WrapTransport(platform string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	return NewProviderError(platform, KindTransient, err)
}
