package market

import "errors"

var (
	// ErrDataUnavailable marks a missing or malformed upstream series or snapshot.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidParameter marks caller input rejected before any computation.
	ErrInvalidParameter = errors.New("invalid parameter")
)
