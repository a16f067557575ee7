package client

import (
	"errors"
	"fmt"
)

// Kind classifies upstream failures for routing and retry decisions.
type Kind int

const (
	// KindNotFound means the season/week does not exist upstream. Not
	// retryable; routed as a clean "no data" outcome.
	KindNotFound Kind = iota
	// KindRateLimited is an upstream 429. Retryable.
	KindRateLimited
	// KindTransient covers 5xx responses and network blips. Retryable.
	KindTransient
	// KindFatal covers auth/config failures (401/403) and anything else
	// that retrying cannot fix.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	default:
		return "fatal"
	}
}

// APIError is the single error type the ESPN client returns.
type APIError struct {
	Kind       Kind
	StatusCode int
	URL        string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("espn api %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("espn api %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether the error is worth retrying: rate limits
// and transient failures only.
func Retryable(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind == KindRateLimited || ae.Kind == KindTransient
	}
	return false
}

// IsNotFound reports whether the error means the requested season/week
// does not exist upstream.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == KindNotFound
}
