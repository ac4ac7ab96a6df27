package feed

import "errors"

// ErrConfig is wrapped by every configuration failure. A run cannot start
// without a valid configuration, so callers treat it as fatal.
var ErrConfig = errors.New("invalid configuration")
