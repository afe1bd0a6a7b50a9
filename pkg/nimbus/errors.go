package nimbus

import (
	"errors"
	"fmt"
)

// Error categories, checked with errors.Is. Each typed error below unwraps
// to one of these so callers can branch on category without knowing the
// concrete type.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConfiguration = errors.New("client misconfigured")
	ErrTransport     = errors.New("transport failure")
)

// ValidationError reports a selector, payload, schedule or request that was
// rejected locally. It is never the result of a network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConfigurationError reports missing or conflicting client credentials.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "nimbus: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// BatchSizeError is returned when a bulk mutation exceeds the endpoint's
// per-call item limit. The request never reaches the wire.
type BatchSizeError struct {
	Count int
	Max   int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch of %d items exceeds the maximum of %d", e.Count, e.Max)
}

func (e *BatchSizeError) Unwrap() error { return ErrValidation }

// TransportError wraps a connection failure or request timeout. Timeout
// distinguishes a deadline expiry from other transport faults.
type TransportError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// AuthTokenFetchError wraps a failure from the configured OAuth token source.
type AuthTokenFetchError struct {
	Err error
}

func (e *AuthTokenFetchError) Error() string {
	return "error while getting oauth token: " + e.Err.Error()
}

func (e *AuthTokenFetchError) Unwrap() error { return e.Err }

// StatusError is returned for any response outside the 2xx range. The full
// normalized response is retained for caller inspection.
type StatusError struct {
	Code     int
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nimbus: request failed with status %d", e.Code)
}

// ResponseParseError reports a response body that could not be decoded into
// the shape an endpoint wrapper expected. The response is retained.
type ResponseParseError struct {
	Response *Response
	Err      error
}

func (e *ResponseParseError) Error() string {
	return "could not parse response JSON: " + e.Err.Error()
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

// IsTimeout reports whether err represents a request timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
