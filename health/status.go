package health

import (
	"fmt"
	"time"
)

// Status is the verification state of one service credential.
type Status int

const (
	// StatusUnknown means nothing is known about the credential yet.
	StatusUnknown Status = iota
	// StatusOperational means the credential verified successfully.
	StatusOperational
	// StatusConfigured means a credential exists but has not been checked.
	StatusConfigured
	// StatusError means the last check failed.
	StatusError
	// StatusNotConfigured means no credential is stored for the service.
	StatusNotConfigured
	// StatusChecking is a transient UI state. The service never returns it.
	StatusChecking
)

var statusNames = [...]string{
	StatusUnknown:       "unknown",
	StatusOperational:   "operational",
	StatusConfigured:    "configured",
	StatusError:         "error",
	StatusNotConfigured: "not-configured",
	StatusChecking:      "checking",
}

// String returns the string representation of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// ParseStatus parses a status name as produced by String.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusUnknown, fmt.Errorf("%w: %q", ErrInvalidStatus, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// HealthResult is the outcome of checking one service.
// Values are never mutated once returned; a newer result supersedes an older one.
type HealthResult struct {
	// Service is the canonical service identifier.
	Service string

	// Status is the verification state.
	Status Status

	// Latency is set only for successful live checks.
	Latency time.Duration

	// Message is a human-readable detail, mainly set on errors.
	Message string

	// CheckedAt is when the result was produced.
	CheckedAt time.Time
}

// IsError reports whether the result represents a failed check.
func (r HealthResult) IsError() bool {
	return r.Status == StatusError
}

func errorResult(service, message string, at time.Time) HealthResult {
	return HealthResult{
		Service:   service,
		Status:    StatusError,
		Message:   message,
		CheckedAt: at,
	}
}
