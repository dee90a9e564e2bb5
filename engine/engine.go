package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/credwatch/cache"
	"github.com/jonwraymond/credwatch/config"
	"github.com/jonwraymond/credwatch/credential"
	"github.com/jonwraymond/credwatch/health"
	"github.com/jonwraymond/credwatch/observe"
	"github.com/jonwraymond/credwatch/security"
	"github.com/jonwraymond/credwatch/verify"
)

type options struct {
	aliases map[string]string
	scoring security.Config
	mw      *observe.Middleware
	cache   cache.Cache[health.HealthResult]
	closers []func(context.Context) error
}

// Option configures an Engine.
type Option func(*options)

// WithAliases sets the initial alias table.
func WithAliases(table map[string]string) Option {
	return func(o *options) {
		o.aliases = table
	}
}

// WithScoring sets the security scoring policy.
func WithScoring(cfg security.Config) Option {
	return func(o *options) {
		o.scoring = cfg
	}
}

// WithMiddleware instruments every operation with mw.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *options) {
		if mw != nil {
			o.mw = mw
		}
	}
}

// WithResultCache replaces the in-memory result cache.
func WithResultCache(c cache.Cache[health.HealthResult]) Option {
	return func(o *options) {
		o.cache = c
	}
}

// withCloser registers fn to run on Close.
func withCloser(fn func(context.Context) error) Option {
	return func(o *options) {
		o.closers = append(o.closers, fn)
	}
}

// Engine is the credential health monitor.
//
// Contract:
// - Concurrency: safe for concurrent use; ApplyConfig may run alongside checks.
// - Errors: health operations never fail; failures are StatusError results.
type Engine struct {
	health  *health.Service
	prober  *credential.Prober
	aliases *credential.Aliases
	store   credential.Store
	mw      *observe.Middleware
	now     func() time.Time
	closers []func(context.Context) error

	mu     sync.RWMutex
	scorer *security.Scorer
}

// New creates an engine that verifies through verifier and reads credential
// metadata from store.
func New(cfg health.Config, verifier health.Verifier, store credential.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	o := options{mw: observe.NopMiddleware()}
	for _, opt := range opts {
		opt(&o)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if o.scoring.Now == nil {
		o.scoring.Now = now
	}

	aliases := credential.NewAliases(o.aliases)

	healthOpts := []health.Option{health.WithNormalizer(aliases), health.WithMiddleware(o.mw)}
	if o.cache != nil {
		healthOpts = append(healthOpts, health.WithCache(o.cache))
	}
	svc, err := health.NewService(cfg, verifier, healthOpts...)
	if err != nil {
		return nil, err
	}

	prober, err := credential.NewProber(store, aliases, credential.WithProbeMiddleware(o.mw))
	if err != nil {
		return nil, err
	}

	scorer, err := security.NewScorer(o.scoring)
	if err != nil {
		return nil, err
	}

	return &Engine{
		health:  svc,
		prober:  prober,
		aliases: aliases,
		store:   store,
		mw:      o.mw,
		now:     now,
		closers: o.closers,
		scorer:  scorer,
	}, nil
}

// FromConfig builds an engine with telemetry, the HTTP verification client
// and the configured store. Close releases all of them.
func FromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	secrets := config.NewSecretResolver()

	obs, err := observe.NewObserver(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	vc, err := cfg.VerifyConfig(ctx, secrets)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	client, err := verify.NewClient(vc)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	store, err := cfg.OpenStore(ctx, secrets, nil)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	base := []Option{
		WithAliases(cfg.Aliases),
		WithScoring(cfg.ScorerConfig()),
		WithMiddleware(mw),
		withCloser(func(context.Context) error { return store.Close() }),
		withCloser(obs.Shutdown),
	}
	e, err := New(cfg.HealthConfig(), client, store, append(base, opts...)...)
	if err != nil {
		_ = store.Close()
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	return e, nil
}

// CheckOne returns the health of service, from cache unless skipCache is set.
func (e *Engine) CheckOne(ctx context.Context, service string, skipCache bool) health.HealthResult {
	return e.health.Check(ctx, service, skipCache)
}

// TestWithoutSaving verifies secret as a candidate credential for service.
// The cached result for the active credential is not touched.
func (e *Engine) TestWithoutSaving(ctx context.Context, service, secret string) health.HealthResult {
	return e.health.TestWithoutSaving(ctx, service, secret)
}

// CheckAll checks services in bounded chunks and returns results in input order.
func (e *Engine) CheckAll(ctx context.Context, services []string, opts health.BatchOptions) []health.HealthResult {
	return e.health.CheckAll(ctx, services, opts)
}

// ProbeExistence reports which services have a stored credential without
// verifying any of them.
func (e *Engine) ProbeExistence(ctx context.Context, services []string) (map[string]credential.Existence, error) {
	return e.prober.ProbeExistence(ctx, services)
}

// InvalidateCache forces the next check of service to verify live.
func (e *Engine) InvalidateCache(service string) {
	e.health.Invalidate(service)
}

// InvalidateAllCache forces every next check to verify live.
func (e *Engine) InvalidateAllCache() {
	e.health.InvalidateAll()
}

// Cached returns the cached result for service, if any.
func (e *Engine) Cached(service string) (health.HealthResult, bool) {
	return e.health.Cached(service)
}

// Normalize returns the canonical identifier for service.
func (e *Engine) Normalize(service string) string {
	return e.aliases.Normalize(service)
}

func (e *Engine) currentScorer() *security.Scorer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scorer
}

// canonicalize returns copies of records and live keyed by canonical service
// identifier, so aliases and casing do not hide live error state.
func (e *Engine) canonicalize(records []credential.Record, live []health.HealthResult) ([]credential.Record, []health.HealthResult) {
	recs := make([]credential.Record, len(records))
	for i, r := range records {
		r.Service = e.aliases.Normalize(r.Service)
		recs[i] = r
	}
	results := make([]health.HealthResult, len(live))
	for i, r := range live {
		r.Service = e.aliases.Normalize(r.Service)
		results[i] = r
	}
	return recs, results
}

// SummarizeHealth scores records, letting live results override persisted
// error state. Identifiers on both sides are normalized first.
func (e *Engine) SummarizeHealth(ctx context.Context, records []credential.Record, live []health.HealthResult) security.Summary {
	records, live = e.canonicalize(records, live)
	var sum security.Summary
	e.mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) observe.Outcome {
		sum = e.currentScorer().Summarize(records, live)
		return observe.Outcome{}
	})(ctx, observe.CheckMeta{Operation: observe.OpScore})
	return sum
}

// AttentionList ranks the stale or erroring credentials among records. Entries
// carry canonical identifiers.
func (e *Engine) AttentionList(records []credential.Record, live []health.HealthResult) []security.AttentionEntry {
	records, live = e.canonicalize(records, live)
	return e.currentScorer().AttentionList(records, live)
}

// Report is the dashboard view of every stored credential.
type Report struct {
	Summary   security.Summary          `json:"summary"`
	Attention []security.AttentionEntry `json:"attention"`
}

// Report scores every record in the store against the cached live results.
// It never triggers verification.
func (e *Engine) Report(ctx context.Context) (Report, error) {
	records, err := e.store.Records(ctx, nil)
	if err != nil {
		return Report{}, err
	}

	var live []health.HealthResult
	for _, r := range records {
		if cached, ok := e.health.Cached(r.Service); ok {
			live = append(live, cached)
		}
	}

	attention := e.AttentionList(records, live)
	if attention == nil {
		attention = []security.AttentionEntry{}
	}
	return Report{
		Summary:   e.SummarizeHealth(ctx, records, live),
		Attention: attention,
	}, nil
}

// SetAliases replaces the alias table. Cached results are keyed by canonical
// identifier, so they are dropped.
func (e *Engine) SetAliases(table map[string]string) {
	e.aliases.Replace(table)
	e.health.InvalidateAll()
}

// ApplyConfig hot-applies the parts of cfg that can change at runtime: the
// alias table and the scoring policy. Other sections need a new Engine.
func (e *Engine) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return ErrNilConfig
	}
	scoring := cfg.ScorerConfig()
	scoring.Now = e.now
	scorer, err := security.NewScorer(scoring)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.scorer = scorer
	e.mu.Unlock()

	e.SetAliases(cfg.Aliases)
	return nil
}

// Watch applies every valid change to the config file at path until ctx is
// cancelled.
func (e *Engine) Watch(ctx context.Context, path string) error {
	logger := e.mw.Logger()
	return config.Watch(ctx, path, logger, func(cfg *config.Config) {
		if err := e.ApplyConfig(cfg); err != nil {
			logger.Error(ctx, "engine: apply config failed", observe.F("error", err.Error()))
		}
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the credential store is reachable.
func (e *Engine) Ready(ctx context.Context) error {
	if p, ok := e.store.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the store and telemetry opened by FromConfig. Every closer
// runs; the errors are joined.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range e.closers {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
