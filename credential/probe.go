package credential

import (
	"context"
	"time"

	"github.com/jonwraymond/credwatch/health"
	"github.com/jonwraymond/credwatch/observe"
)

// Existence reports whether a credential is stored for one service.
type Existence struct {
	// Service is the canonical identifier.
	Service   string
	Exists    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status is the initial UI state implied by existence alone.
func (e Existence) Status() health.Status {
	if e.Exists {
		return health.StatusConfigured
	}
	return health.StatusNotConfigured
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeMiddleware instruments every probe with mw.
func WithProbeMiddleware(mw *observe.Middleware) ProberOption {
	return func(p *Prober) {
		if mw != nil {
			p.mw = mw
		}
	}
}

// Prober answers existence questions from one bulk store read.
type Prober struct {
	store      Store
	normalizer health.Normalizer
	mw         *observe.Middleware
}

// NewProber creates a prober. A nil normalizer means health.CanonicalName.
func NewProber(store Store, normalizer health.Normalizer, opts ...ProberOption) (*Prober, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if normalizer == nil {
		normalizer = health.NormalizerFunc(health.CanonicalName)
	}
	p := &Prober{store: store, normalizer: normalizer, mw: observe.NopMiddleware()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProbeExistence reports, for every requested service, whether a credential
// is stored. The map is keyed by the identifiers as given; services with no
// record map to Exists=false. The verifier is never contacted.
func (p *Prober) ProbeExistence(ctx context.Context, services []string) (map[string]Existence, error) {
	out := make(map[string]Existence, len(services))
	if len(services) == 0 {
		return out, nil
	}

	canonical := make([]string, 0, len(services))
	seen := make(map[string]bool, len(services))
	for _, s := range services {
		c := p.normalizer.Normalize(s)
		if c != "" && !seen[c] {
			seen[c] = true
			canonical = append(canonical, c)
		}
	}

	var (
		records []Record
		err     error
	)
	p.mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) observe.Outcome {
		if len(canonical) > 0 {
			records, err = p.store.Records(ctx, canonical)
		}
		return observe.Outcome{Err: err}
	})(ctx, observe.CheckMeta{Operation: observe.OpProbe})
	if err != nil {
		return nil, err
	}

	byService := make(map[string]Record, len(records))
	for _, r := range records {
		byService[r.Service] = r
	}

	for _, s := range services {
		c := p.normalizer.Normalize(s)
		e := Existence{Service: c}
		if r, ok := byService[c]; ok {
			e.Exists = true
			e.CreatedAt = r.CreatedAt
			e.UpdatedAt = r.UpdatedAt
		}
		out[s] = e
	}
	return out, nil
}
