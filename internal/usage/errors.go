package usage

import "errors"

// ErrLimitReached means the user has no interview quota left in the
// current period. Handlers map it to 429.
var ErrLimitReached = errors.New("interview limit reached")
