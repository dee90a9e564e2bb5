package health

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/credwatch/cache"
	"github.com/jonwraymond/credwatch/observe"
	"github.com/jonwraymond/credwatch/resilience"
)

// Config configures a Service.
type Config struct {
	// Policy bounds and retries every verification call.
	// Default: resilience.DefaultPolicy()
	Policy resilience.Policy

	// Cache configures the result cache. Its clock defaults to Now.
	// Default: 5 minute TTL, 50 entries
	Cache cache.Config

	// RateLimit gates verification calls when set.
	// Default: nil (unlimited)
	RateLimit *resilience.RateLimiterConfig

	// Concurrency is the default batch chunk size.
	// Default: 6
	Concurrency int

	// Extractors turn failures into messages.
	// Default: DefaultExtractors()
	Extractors []MessageExtractor

	// Now stamps results.
	// Default: time.Now
	Now func() time.Time
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Policy:      resilience.DefaultPolicy(),
		Cache:       cache.Config{TTL: 5 * time.Minute, MaxEntries: 50},
		Concurrency: 6,
		Extractors:  DefaultExtractors(),
		Now:         time.Now,
	}
}

func (c Config) withDefaults() Config {
	// A zero policy means the defaults, including the two retries.
	if c.Policy.Timeout == 0 && c.Policy.MaxRetries == 0 && c.Policy.BaseDelay == 0 {
		c.Policy = resilience.DefaultPolicy()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 6
	}
	if len(c.Extractors) == 0 {
		c.Extractors = DefaultExtractors()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Cache.Now == nil {
		c.Cache.Now = c.Now
	}
	return c
}

// Option configures a Service.
type Option func(*Service)

// WithNormalizer sets the service identifier normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithMiddleware instruments every check with mw.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(s *Service) {
		if mw != nil {
			s.mw = mw
		}
	}
}

// WithCache replaces the default in-memory result cache.
func WithCache(c cache.Cache[HealthResult]) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// Service verifies credentials and caches the results.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: failures never escape; they become HealthResults with StatusError.
// - Results: never StatusChecking.
type Service struct {
	config     Config
	verifier   Verifier
	normalizer Normalizer
	cache      cache.Cache[HealthResult]
	limiter    *resilience.RateLimiter
	mw         *observe.Middleware
	flights    singleflight.Group
	gens       generations
}

// NewService creates a health check service around verifier.
func NewService(config Config, verifier Verifier, opts ...Option) (*Service, error) {
	if verifier == nil {
		return nil, ErrNilVerifier
	}
	config = config.withDefaults()

	s := &Service{
		config:     config,
		verifier:   verifier,
		normalizer: NormalizerFunc(CanonicalName),
		mw:         observe.NopMiddleware(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache[HealthResult](config.Cache)
	}
	if config.RateLimit != nil {
		s.limiter = resilience.NewRateLimiter(*config.RateLimit)
	}
	return s, nil
}

// Normalize returns the canonical form of service.
func (s *Service) Normalize(service string) string {
	return s.normalizer.Normalize(service)
}

// flight is the shared result of one in-flight verification.
type flight struct {
	result HealthResult
	err    error
}

// Check returns the health of service, from cache unless skipCache is set.
//
// Concurrent checks of one service share a single verification call. Every
// live result, including errors, is written to the cache unless the service
// was invalidated while it was verified.
func (s *Service) Check(ctx context.Context, service string, skipCache bool) HealthResult {
	canonical := s.normalizer.Normalize(service)
	meta := observe.CheckMeta{Service: canonical, Operation: observe.OpCheck, BatchID: BatchID(ctx)}

	var result HealthResult
	s.mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) observe.Outcome {
		var (
			hit bool
			err error
		)
		result, hit, err = s.check(ctx, meta, skipCache)
		return observe.Outcome{Status: result.Status.String(), CacheHit: hit, Err: err}
	})(ctx, meta)
	return result
}

func (s *Service) check(ctx context.Context, meta observe.CheckMeta, skipCache bool) (HealthResult, bool, error) {
	if meta.Service == "" {
		return errorResult(meta.Service, ErrEmptyService.Error(), s.config.Now()), false, ErrEmptyService
	}

	var gen generation
	if skipCache {
		// A forced refresh must not join a call that started earlier, and
		// that call's result must not overwrite the fresh one.
		gen = s.gens.advance(meta.Service, nil)
	} else {
		if cached, ok := s.cache.Get(meta.Service); ok {
			return cached, true, nil
		}
		gen = s.gens.current(meta.Service)
	}

	// The shared call must outlive any single waiter, so it runs detached
	// from the caller's cancellation. Attempt timeouts still bound it.
	ch := s.flights.DoChan(gen.flightKey(meta.Service), func() (any, error) {
		result, err := s.verify(context.WithoutCancel(ctx), meta, nil)
		var setErr error
		stored := s.gens.commit(meta.Service, gen, func() {
			setErr = s.cache.Set(meta.Service, result)
		})
		switch {
		case !stored:
			s.mw.Logger().Debug(ctx, "discarding check result invalidated in flight",
				observe.F("service", meta.Service))
		case setErr != nil:
			s.mw.Logger().Warn(ctx, "caching check result failed",
				observe.F("service", meta.Service), observe.F("error", setErr.Error()))
		}
		return flight{result: result, err: err}, nil
	})

	select {
	case <-ctx.Done():
		err := ctx.Err()
		return errorResult(meta.Service, err.Error(), s.config.Now()), false, err
	case res := <-ch:
		f := res.Val.(flight)
		return f.result, false, f.err
	}
}

// TestWithoutSaving verifies candidate as the credential for service without
// reading or writing the cache, so the active credential's cached status is
// left untouched.
func (s *Service) TestWithoutSaving(ctx context.Context, service, candidate string) HealthResult {
	canonical := s.normalizer.Normalize(service)
	meta := observe.CheckMeta{Service: canonical, Operation: observe.OpTest}

	var result HealthResult
	s.mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) observe.Outcome {
		var err error
		if meta.Service == "" {
			err = ErrEmptyService
			result = errorResult(meta.Service, err.Error(), s.config.Now())
		} else {
			result, err = s.verify(ctx, meta, &candidate)
		}
		return observe.Outcome{Status: result.Status.String(), Err: err}
	})(ctx, meta)
	return result
}

// verify runs one logical verification through the retry policy and
// normalizes whatever happened into a HealthResult. The error is returned
// only for telemetry.
func (s *Service) verify(ctx context.Context, meta observe.CheckMeta, candidate *string) (HealthResult, error) {
	opts := []resilience.ExecutorOption{
		resilience.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			s.mw.Retry(ctx, meta, attempt, err, delay)
		}),
	}
	if s.limiter != nil {
		opts = append(opts, resilience.WithRateLimiter(s.limiter))
	}
	exec := resilience.NewExecutor(s.config.Policy, opts...)

	outcome, err := resilience.Do(ctx, exec, func(ctx context.Context) (Outcome, error) {
		start := time.Now()
		out, err := s.verifier.Verify(ctx, meta.Service, candidate)
		if err == nil && out.Valid && out.Latency <= 0 {
			out.Latency = time.Since(start)
		}
		return out, err
	})

	now := s.config.Now()
	if err != nil {
		return errorResult(meta.Service, ExtractMessage(MessageSource{Err: err}, s.config.Extractors...), now), err
	}

	if outcome.Valid {
		return HealthResult{
			Service:   meta.Service,
			Status:    StatusOperational,
			Latency:   outcome.Latency,
			CheckedAt: now,
		}, nil
	}

	msg := ExtractMessage(MessageSource{Message: outcome.Message, Payload: outcome.Payload}, s.config.Extractors...)
	return errorResult(meta.Service, msg, now), fmt.Errorf("%w: %s", ErrCredentialRejected, msg)
}

// Invalidate drops the cached result for service. A verification already in
// flight for service neither serves later checks nor writes its result back.
func (s *Service) Invalidate(service string) {
	canonical := s.normalizer.Normalize(service)
	s.gens.advance(canonical, func() { s.cache.Delete(canonical) })
}

// InvalidateAll drops every cached result, with the same effect on in-flight
// verifications as Invalidate.
func (s *Service) InvalidateAll() {
	s.gens.advanceAll(s.cache.Clear)
}

// Cached returns the cached result for service without verifying.
func (s *Service) Cached(service string) (HealthResult, bool) {
	return s.cache.Get(s.normalizer.Normalize(service))
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}
