package health

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Outcome is what the verification endpoint reported for one credential.
type Outcome struct {
	// Valid reports whether the credential was accepted.
	Valid bool

	// Latency is the round-trip time as measured by the verifier.
	// When zero the service measures the attempt itself.
	Latency time.Duration

	// Message is a structured rejection reason, if the endpoint sent one.
	Message string

	// Payload is the raw rejection body, possibly nested JSON.
	Payload json.RawMessage
}

// Verifier checks one credential against the remote verification endpoint.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Verify must honor cancellation/deadlines.
// - Candidate: when candidate is non-nil the verifier tests that value
//   instead of the stored credential, and must not persist it.
// - Errors: a definite rejection should be reported as Outcome{Valid: false}
//   rather than an error; errors are classified for retry.
type Verifier interface {
	Verify(ctx context.Context, service string, candidate *string) (Outcome, error)
}

// VerifierFunc is an adapter to allow ordinary functions to be used as Verifiers.
type VerifierFunc func(ctx context.Context, service string, candidate *string) (Outcome, error)

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, service string, candidate *string) (Outcome, error) {
	return f(ctx, service, candidate)
}

// Normalizer maps caller-supplied service identifiers to one canonical form.
// Implementations must be total and deterministic.
type Normalizer interface {
	Normalize(service string) string
}

// NormalizerFunc is an adapter to allow ordinary functions to be used as Normalizers.
type NormalizerFunc func(service string) string

// Normalize calls f.
func (f NormalizerFunc) Normalize(service string) string {
	return f(service)
}

// CanonicalName trims surrounding whitespace and lowercases service.
// It is the default Normalizer.
func CanonicalName(service string) string {
	return strings.ToLower(strings.TrimSpace(service))
}
