package graphcache

import "errors"

// ErrQueryNotRegistered is returned by a Registry when asked for a name it
// does not know, and wrapped into the log warning ProcessPending emits when
// it silently drops a pending fetch for that reason.
var ErrQueryNotRegistered = errors.New("graphcache: query not registered")
