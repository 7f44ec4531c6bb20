package scores

import "errors"

// Error taxonomy shared by the store, the ranking policy and the HTTP layer.
// Callers classify failures with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStorage         = errors.New("storage error")
	ErrNotFound        = errors.New("not found")
)
