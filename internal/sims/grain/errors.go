package grain

import "errors"

var (
	// ErrInvalidConfig reports seeding or construction parameters that would
	// produce a degenerate lattice.
	ErrInvalidConfig = errors.New("grain: invalid configuration")
	// ErrUnsupportedMode is returned when stepping a task mode with no rule.
	ErrUnsupportedMode = errors.New("grain: unsupported task mode")
	// ErrUnknownMarker signals a marker with no registry entry. Every live
	// marker is registered, so this is an internal consistency failure.
	ErrUnknownMarker = errors.New("grain: unknown marker")
	// ErrUnknownNeighbourhood is returned for unregistered neighbourhood names.
	ErrUnknownNeighbourhood = errors.New("grain: unknown neighbourhood")
)
