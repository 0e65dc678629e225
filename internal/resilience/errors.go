package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// TransientError wraps an error that is safe to retry (network failure,
// timeout, 5xx).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// RateLimitError reports upstream throttling. It is retried like a
// TransientError.
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Service, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// CredentialError reports that an upstream service rejected the configured
// credentials. It is never retried and aborts the whole run.
type CredentialError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: credentials rejected (HTTP %d): %v", e.Service, e.StatusCode, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// PermanentError reports a malformed request or non-retryable 4xx.
type PermanentError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s: permanent failure (HTTP %d): %v", e.Service, e.StatusCode, e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// ClassifyStatus wraps err in the taxonomy type matching an HTTP status
// code. 401 and 403 are credential failures, 429 is a rate limit, 408 and
// 5xx are transient, and any other 4xx is permanent. Other codes return err
// unchanged.
func ClassifyStatus(service string, statusCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(statusCode))
	}
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &CredentialError{Service: service, StatusCode: statusCode, Err: err}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{Service: service, Err: err}
	case IsTransientHTTPStatus(statusCode) || statusCode >= 500:
		return &TransientError{Err: err, StatusCode: statusCode}
	case statusCode >= 400:
		return &PermanentError{Service: service, StatusCode: statusCode, Err: err}
	default:
		return err
	}
}

// IsCredential reports whether err (or any error in its chain) is a
// CredentialError.
func IsCredential(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

// IsRateLimit reports whether err (or any error in its chain) is a
// RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError or RateLimitError, or if it matches common transient error
// patterns (network timeouts, connection resets, DNS failures, attempt
// deadlines).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if IsCredential(err) {
		return false
	}
	var pe *PermanentError
	if errors.As(err, &pe) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if IsRateLimit(err) {
		return true
	}

	// A per-attempt timeout surfaces as a deadline; the caller's own
	// cancellation is checked separately by Do.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
		"unexpected eof",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}

// Error categories reported by ClassifyError.
const (
	CategoryCredential = "credential"
	CategoryTransient  = "transient"
	CategoryPermanent  = "permanent"
)

// ClassifyError categorizes an error as "credential", "transient" or
// "permanent".
func ClassifyError(err error) string {
	switch {
	case IsCredential(err):
		return CategoryCredential
	case IsTransient(err):
		return CategoryTransient
	default:
		return CategoryPermanent
	}
}
