package health

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCredentialRejected indicates the verification endpoint rejected the credential.
	ErrCredentialRejected = errors.New("health: credential rejected")

	// ErrEmptyService indicates a service identifier normalized to nothing.
	ErrEmptyService = errors.New("health: service identifier is empty")

	// ErrInvalidStatus indicates an unknown status name.
	ErrInvalidStatus = errors.New("health: invalid status")

	// ErrNilVerifier indicates a Service was constructed without a verifier.
	ErrNilVerifier = errors.New("health: verifier is nil")
)

// StatusError is a non-2xx response from the verification endpoint.
// Its body is kept so the message extractors can dig out the real reason.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("health: verification endpoint returned %d %s", e.Code, http.StatusText(e.Code))
}

// Transient reports whether the response is worth retrying: request timeouts,
// rate limiting and gateway failures.
func (e *StatusError) Transient() bool {
	switch e.Code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// MalformedResponseError is a verification response that could not be decoded.
// It is permanent; the check reports a generic message.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return "health: malformed verification response"
	}
	return "health: malformed verification response: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Transient always reports false so a garbled body is never retried.
func (e *MalformedResponseError) Transient() bool {
	return false
}
