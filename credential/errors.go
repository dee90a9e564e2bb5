package credential

import "errors"

var (
	// ErrNilStore indicates a Prober was constructed without a store.
	ErrNilStore = errors.New("credential: store is nil")

	// ErrInvalidRegistration indicates an empty store name or nil factory.
	ErrInvalidRegistration = errors.New("credential: invalid store registration")

	// ErrStoreRegistered indicates a store name is already taken.
	ErrStoreRegistered = errors.New("credential: store already registered")

	// ErrStoreNotRegistered indicates no factory exists for a store name.
	ErrStoreNotRegistered = errors.New("credential: store not registered")

	// ErrInvalidTable indicates a table name that is not a plain identifier.
	ErrInvalidTable = errors.New("credential: invalid table name")

	// ErrMissingDSN indicates the postgres store was configured without a DSN.
	ErrMissingDSN = errors.New("credential: postgres dsn is required")
)
