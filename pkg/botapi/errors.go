package botapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors for transport operations.
var (
	// ErrInvalidArgument indicates a caller-supplied argument was rejected
	// before any I/O was attempted.
	ErrInvalidArgument = errors.New("botapi: invalid argument")

	// ErrDecode indicates a successful HTTP response did not carry a
	// decodable Bot API envelope.
	ErrDecode = errors.New("botapi: malformed response")
)

// unknownDescription is used when a failed response carries no description.
const unknownDescription = "Unknown error"

// APIError is a non-2xx response from the Bot API.
type APIError struct {
	StatusCode  int
	Method      string
	Description string

	// RetryAfter is the number of seconds the API asked the caller to wait.
	// It is only set for 429 responses whose body carried
	// parameters.retry_after.
	RetryAfter *int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("botapi: %s: %d %s (retry after %ds)", e.Method, e.StatusCode, e.Description, *e.RetryAfter)
	}
	return fmt.Sprintf("botapi: %s: %d %s", e.Method, e.StatusCode, e.Description)
}

// IsRateLimited reports whether the API answered 429 Too Many Requests.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// retryDelay returns how long to wait before the single retry, and whether
// a retry should happen at all.
func (e *APIError) retryDelay() (time.Duration, bool) {
	if !e.IsRateLimited() || e.RetryAfter == nil || *e.RetryAfter < 0 {
		return 0, false
	}
	return time.Duration(*e.RetryAfter) * time.Second, true
}

// newAPIError builds an APIError from a failed response body. Bodies that
// are not JSON, or lack a description, fall back to unknownDescription.
func newAPIError(method string, status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode:  status,
		Method:      method,
		Description: unknownDescription,
	}

	var env struct {
		Description *string         `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return apiErr
	}
	if env.Description != nil {
		apiErr.Description = *env.Description
	}

	if status == http.StatusTooManyRequests && len(env.Parameters) > 0 {
		var params struct {
			RetryAfter *float64 `json:"retry_after"`
		}
		if json.Unmarshal(env.Parameters, &params) == nil && params.RetryAfter != nil {
			seconds := int(*params.RetryAfter)
			apiErr.RetryAfter = &seconds
		}
	}

	return apiErr
}

// TransportError is a network-level failure (connection refused, DNS,
// timeout) that prevented a response from being read. It is never an
// APIError. The underlying error is available via Unwrap.
type TransportError struct {
	Method string
	Err    error

	token string
}

// Error implements the error interface. The bot token is stripped from the
// message since net/http errors embed the request URL.
func (e *TransportError) Error() string {
	msg := e.Err.Error()
	if e.token != "" {
		msg = strings.ReplaceAll(msg, e.token, "<token>")
	}
	return fmt.Sprintf("botapi: %s request failed: %s", e.Method, msg)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
