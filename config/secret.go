package config

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// SecretProvider resolves secret references of one kind.
//
// Implementations must be safe for concurrent use and must not log values.
type SecretProvider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// EnvSecrets resolves secretref:env:<NAME> from the process environment.
type EnvSecrets struct{}

// Name returns "env".
func (EnvSecrets) Name() string { return "env" }

// Resolve returns the value of the environment variable ref.
func (EnvSecrets) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, ref)
	}
	return v, nil
}

// FileSecrets resolves secretref:file:<path> to the trimmed file contents,
// as mounted by container secret stores.
type FileSecrets struct{}

// Name returns "file".
func (FileSecrets) Name() string { return "file" }

// Resolve reads the file at ref.
func (FileSecrets) Resolve(_ context.Context, ref string) (string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("config: read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SecretResolver resolves values that may be secret references.
type SecretResolver struct {
	providers map[string]SecretProvider
}

// NewSecretResolver creates a resolver. With no providers it knows env and file.
func NewSecretResolver(providers ...SecretProvider) *SecretResolver {
	if len(providers) == 0 {
		providers = []SecretProvider{EnvSecrets{}, FileSecrets{}}
	}
	r := &SecretResolver{providers: make(map[string]SecretProvider, len(providers))}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// Resolve returns value unchanged unless it is a secret reference, in which
// case the named provider resolves it. Empty secrets are an error.
func (r *SecretResolver) Resolve(ctx context.Context, value string) (string, error) {
	name, ref, ok := ParseSecretRef(value)
	if !ok {
		return value, nil
	}
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSecretProvider, name)
	}
	resolved, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if resolved == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, name)
	}
	return resolved, nil
}

// ParseSecretRef splits a reference of the form secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(value), "secretref:")
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}
