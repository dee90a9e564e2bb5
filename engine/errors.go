package engine

import "errors"

var (
	// ErrNilStore indicates an Engine was constructed without a credential store.
	ErrNilStore = errors.New("engine: credential store is nil")

	// ErrNilConfig indicates FromConfig was given no configuration.
	ErrNilConfig = errors.New("engine: config is nil")
)
