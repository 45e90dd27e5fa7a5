package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
)

// ErrNotFound marks a 404 on an optional per-file lookup. It is handled
// inside the gateway and never surfaced to the user.
var ErrNotFound = errors.New("not found")

// AuthError indicates the token was rejected (missing scope, revoked, expired).
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// RateLimitError indicates the API quota is exhausted. ResetAt is the time
// the window reopens, when the platform reported one.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return "rate limit exceeded"
	}
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// HTTPError is any other non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP %d: %s", e.StatusCode, e.Message)
}

// translateError maps go-github error types onto the gateway's error kinds.
// A rate-limited 403 must come out distinct from a generic 403 so the caller
// can print a useful message.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{ResetAt: rateErr.Rate.Reset.Time}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitError{}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return &AuthError{StatusCode: http.StatusUnauthorized, Message: respErr.Message}
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, respErr.Message)
		default:
			return &HTTPError{StatusCode: respErr.Response.StatusCode, Message: respErr.Message}
		}
	}

	return err
}

// IsAbort reports whether err must stop the whole run rather than degrade
// to a partially classified repository.
func IsAbort(err error) bool {
	var authErr *AuthError
	var rateErr *RateLimitError
	return errors.As(err, &authErr) || errors.As(err, &rateErr)
}
