package config

import "errors"

var (
	// ErrInvalid indicates a configuration value failed validation.
	ErrInvalid = errors.New("config: invalid")

	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrUnknownSecretProvider indicates a secretref naming no registered provider.
	ErrUnknownSecretProvider = errors.New("config: secret provider not registered")

	// ErrEmptySecret indicates a secret resolved to an empty value.
	ErrEmptySecret = errors.New("config: secret resolved to empty value")
)
