package sentinel

import "errors"

// Storage-level errors. Persisters return these (optionally wrapped) and the
// session layer decides once whether a miss means "fresh session" or a failure.
var (
	ErrNotFound    = errors.New("not found")
	ErrCorrupt     = errors.New("corrupt snapshot")
	ErrUnavailable = errors.New("unavailable")
)
