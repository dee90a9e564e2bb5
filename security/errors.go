package security

import "errors"

// ErrInvalidConfig indicates scoring thresholds or weights that cannot be used.
var ErrInvalidConfig = errors.New("security: invalid scorer config")
