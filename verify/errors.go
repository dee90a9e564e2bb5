package verify

import "errors"

var (
	// ErrMissingEndpoint indicates no verification URL was configured.
	ErrMissingEndpoint = errors.New("verify: endpoint is required")

	// ErrMissingSigningKey indicates no token signing key was configured.
	ErrMissingSigningKey = errors.New("verify: signing key is required")
)
