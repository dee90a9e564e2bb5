package credential

import (
	"context"
	"time"

	"github.com/jonwraymond/credwatch/health"
)

// Record is the metadata kept for one stored credential. It never holds the
// secret value.
type Record struct {
	// Service is the canonical service identifier.
	Service string

	// CreatedAt is when the credential was first stored. Zero if unknown.
	CreatedAt time.Time

	// UpdatedAt is when the credential was last rotated. Zero if never.
	UpdatedAt time.Time

	// LastCheckedStatus is the status persisted by the last check.
	// StatusUnknown if the credential was never checked.
	LastCheckedStatus health.Status
}

// EffectiveDate is UpdatedAt when set, else CreatedAt. ok is false when
// neither is known.
func (r Record) EffectiveDate() (t time.Time, ok bool) {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt, true
	}
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt, true
	}
	return time.Time{}, false
}

// Store reads credential metadata in bulk.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Records must honor cancellation/deadlines.
// - Results: one Record per stored service among services, in any order;
//   services without a stored credential are simply absent. An empty
//   services slice returns every record.
// - Secrets: implementations must never read or return secret values.
type Store interface {
	Records(ctx context.Context, services []string) ([]Record, error)
	Close() error
}
