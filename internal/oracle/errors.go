package oracle

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyReply means the oracle answered with no usable content.
	ErrEmptyReply = errors.New("oracle returned no content")

	// ErrMalformedReply means the reply content was not valid JSON.
	ErrMalformedReply = errors.New("oracle reply is not valid JSON")

	// ErrUnexpectedShape means the reply parsed but held no record list,
	// neither as the top-level value nor under any top-level key.
	ErrUnexpectedShape = errors.New("oracle reply contains no record list")
)

// APIError is a non-success HTTP response from the oracle endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("oracle returned status %d: %s", e.StatusCode, body)
}

// Transient reports whether the failure is worth retrying: rate limits
// and server-side errors are, anything else (bad request, auth) is not.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RequestError is a transport-level failure before any HTTP status was
// received. Treated as the server-unavailable class, so retryable.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string   { return fmt.Sprintf("oracle request failed: %v", e.Err) }
func (e *RequestError) Unwrap() error   { return e.Err }
func (e *RequestError) Transient() bool { return true }
