package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/credwatch/cache"
	"github.com/jonwraymond/credwatch/credential"
	"github.com/jonwraymond/credwatch/health"
	"github.com/jonwraymond/credwatch/observe"
	"github.com/jonwraymond/credwatch/resilience"
	"github.com/jonwraymond/credwatch/security"
	"github.com/jonwraymond/credwatch/verify"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 2
	DefaultBaseDelay   = time.Second
	DefaultConcurrency = 6
	DefaultCacheTTL    = 5 * time.Minute
	DefaultCacheSize   = 50
	DefaultStoreDriver = "memory"
	DefaultServiceName = observe.DefaultServiceName
)

// Config is the top-level engine configuration.
type Config struct {
	Verifier  VerifierConfig    `yaml:"verifier"`
	Check     CheckConfig       `yaml:"check"`
	Cache     CacheConfig       `yaml:"cache"`
	Store     StoreConfig       `yaml:"store"`
	Aliases   map[string]string `yaml:"aliases"`
	Scoring   ScoringConfig     `yaml:"scoring"`
	API       APIConfig         `yaml:"api"`
	Telemetry observe.Config    `yaml:"telemetry"`
}

// VerifierConfig locates and authenticates to the verification endpoint.
type VerifierConfig struct {
	Endpoint string `yaml:"endpoint"`

	// SigningKey may be a secretref.
	SigningKey string `yaml:"signing_key"`

	Issuer       string        `yaml:"issuer"`
	Audience     string        `yaml:"audience"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// CheckConfig bounds verification calls.
type CheckConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Concurrency int           `yaml:"concurrency"`

	// RateLimit is verification calls per second; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// CacheConfig sizes the result cache.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// StoreConfig selects the credential metadata store.
type StoreConfig struct {
	// Driver is a credential.Registry name: memory | postgres.
	Driver string `yaml:"driver"`

	// DSN may be a secretref.
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// ScoringConfig is the security scoring policy.
type ScoringConfig struct {
	FreshDays   int     `yaml:"fresh_days"`
	StaleDays   int     `yaml:"stale_days"`
	AgeWeight   float64 `yaml:"age_weight"`
	ErrorWeight float64 `yaml:"error_weight"`
	BasePenalty float64 `yaml:"base_penalty"`
	FreshBonus  float64 `yaml:"fresh_bonus"`
}

// APIConfig configures the HTTP handlers.
type APIConfig struct {
	// AuthKey, when set, requires an HS256 bearer token signed with it.
	// May be a secretref.
	AuthKey string `yaml:"auth_key"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Check: CheckConfig{
			Timeout:     DefaultTimeout,
			MaxRetries:  DefaultMaxRetries,
			BaseDelay:   DefaultBaseDelay,
			Concurrency: DefaultConcurrency,
		},
		Cache: CacheConfig{
			TTL:        DefaultCacheTTL,
			MaxEntries: DefaultCacheSize,
		},
		Store: StoreConfig{
			Driver: DefaultStoreDriver,
			Table:  credential.DefaultTable,
		},
		Scoring: ScoringConfig{
			FreshDays:   60,
			StaleDays:   180,
			AgeWeight:   50,
			ErrorWeight: 20,
			BasePenalty: 15,
			FreshBonus:  30,
		},
		Telemetry: observe.DefaultConfig(),
	}
}

// Load reads, expands and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse expands environment references in data and decodes it over the
// defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
	}

	if c.Verifier.Endpoint == "" {
		return invalid("verifier.endpoint is required")
	}
	if c.Verifier.SigningKey == "" {
		return invalid("verifier.signing_key is required")
	}
	if c.Verifier.TokenTTL < 0 || c.Verifier.MaxBodyBytes < 0 {
		return invalid("verifier.token_ttl and verifier.max_body_bytes must not be negative")
	}

	if c.Check.Timeout <= 0 {
		return invalid("check.timeout must be positive")
	}
	if c.Check.MaxRetries < 0 {
		return invalid("check.max_retries must not be negative")
	}
	if c.Check.BaseDelay <= 0 {
		return invalid("check.base_delay must be positive")
	}
	if c.Check.Concurrency <= 0 {
		return invalid("check.concurrency must be positive")
	}
	if c.Check.RateLimit < 0 || c.Check.Burst < 0 {
		return invalid("check.rate_limit and check.burst must not be negative")
	}

	if c.Cache.TTL <= 0 {
		return invalid("cache.ttl must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return invalid("cache.max_entries must be positive")
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return invalid("store.dsn is required for the postgres driver")
		}
	default:
		return invalid("unknown store.driver %q", c.Store.Driver)
	}

	if c.Scoring.FreshDays <= 0 || c.Scoring.StaleDays <= 0 {
		return invalid("scoring.fresh_days and scoring.stale_days must be positive")
	}
	if err := c.ScorerConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("%w: telemetry: %w", ErrInvalid, err)
	}
	return nil
}

// HealthConfig derives the health service configuration.
func (c *Config) HealthConfig() health.Config {
	cfg := health.DefaultConfig()
	cfg.Policy = resilience.Policy{
		Timeout:    c.Check.Timeout,
		MaxRetries: c.Check.MaxRetries,
		BaseDelay:  c.Check.BaseDelay,
	}
	cfg.Cache = cache.Config{TTL: c.Cache.TTL, MaxEntries: c.Cache.MaxEntries}
	cfg.Concurrency = c.Check.Concurrency
	if c.Check.RateLimit > 0 {
		cfg.RateLimit = &resilience.RateLimiterConfig{Rate: c.Check.RateLimit, Burst: c.Check.Burst}
	}
	return cfg
}

// ScorerConfig derives the security scoring policy.
func (c *Config) ScorerConfig() security.Config {
	return security.Config{
		FreshWithin: time.Duration(c.Scoring.FreshDays) * security.Day,
		StaleAfter:  time.Duration(c.Scoring.StaleDays) * security.Day,
		AgeWeight:   c.Scoring.AgeWeight,
		ErrorWeight: c.Scoring.ErrorWeight,
		BasePenalty: c.Scoring.BasePenalty,
		FreshBonus:  c.Scoring.FreshBonus,
	}
}

// VerifyConfig derives the verification client configuration, resolving the
// signing key through secrets.
func (c *Config) VerifyConfig(ctx context.Context, secrets *SecretResolver) (verify.Config, error) {
	key, err := secrets.Resolve(ctx, c.Verifier.SigningKey)
	if err != nil {
		return verify.Config{}, fmt.Errorf("config: verifier.signing_key: %w", err)
	}
	return verify.Config{
		Endpoint:     c.Verifier.Endpoint,
		SigningKey:   []byte(key),
		Issuer:       c.Verifier.Issuer,
		Audience:     c.Verifier.Audience,
		TokenTTL:     c.Verifier.TokenTTL,
		MaxBodyBytes: c.Verifier.MaxBodyBytes,
	}, nil
}

// OpenStore creates the configured credential store from registry,
// resolving the DSN through secrets. A nil registry means
// credential.DefaultRegistry.
func (c *Config) OpenStore(ctx context.Context, secrets *SecretResolver, registry *credential.Registry) (credential.Store, error) {
	if registry == nil {
		registry = credential.DefaultRegistry
	}
	dsn, err := secrets.Resolve(ctx, c.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("config: store.dsn: %w", err)
	}
	return registry.Create(c.Store.Driver, map[string]any{
		"dsn":   dsn,
		"table": c.Store.Table,
	})
}

// APIKey resolves the HTTP bearer signing key; empty means no auth.
func (c *Config) APIKey(ctx context.Context, secrets *SecretResolver) ([]byte, error) {
	if c.API.AuthKey == "" {
		return nil, nil
	}
	key, err := secrets.Resolve(ctx, c.API.AuthKey)
	if err != nil {
		return nil, fmt.Errorf("config: api.auth_key: %w", err)
	}
	return []byte(key), nil
}
