package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an upstream failure.
type Kind int

const (
	// KindFatal covers bad requests, auth failures and unexpected responses.
	KindFatal Kind = iota
	// KindTransient covers network failures and overloaded or unavailable upstreams.
	KindTransient
	// KindRateLimited means the provider rejected the call for quota reasons.
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	default:
		return "fatal"
	}
}

// Error is returned by every Completer on failure.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or KindFatal for errors that
// did not come from a Completer.
func KindOf(err error) Kind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return KindFatal
}

// IsRateLimited reports whether err is an upstream rate-limit rejection.
func IsRateLimited(err error) bool {
	return err != nil && KindOf(err) == KindRateLimited
}

// kindForStatus maps an HTTP status returned by a provider to a Kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		529: // Anthropic "overloaded"
		return KindTransient
	default:
		return KindFatal
	}
}

func statusError(provider string, status int, err error) *Error {
	return &Error{Kind: kindForStatus(status), Provider: provider, StatusCode: status, Err: err}
}

func transportError(provider string, err error) *Error {
	return &Error{Kind: KindTransient, Provider: provider, Err: err}
}

func fatalError(provider string, err error) *Error {
	return &Error{Kind: KindFatal, Provider: provider, Err: err}
}
