package location

import "errors"

var (
	// ErrLocationUnavailable is returned when no device position can be
	// obtained: lookup denied, timed out or unsupported.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrAddressResolutionFailed is returned when coordinates cannot be turned
	// into a display address.
	ErrAddressResolutionFailed = errors.New("address resolution failed")
)
