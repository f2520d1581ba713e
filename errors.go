package overlay

import "errors"

// Error taxonomy shared by every overlay package.
//
// Lower layers wrap these with context (fmt.Errorf("gpu: map registers: %w", ...)),
// so callers should test with errors.Is.
var (
	// ErrInvalidParameter is returned for nil or malformed input, draws with
	// too few vertices and non-positive circle radii.
	ErrInvalidParameter = errors.New("overlay: invalid parameter")

	// ErrInsufficientResources is returned when memory for overlay buffers
	// cannot be allocated or a frame runs out of vertex or primitive budget.
	ErrInsufficientResources = errors.New("overlay: insufficient resources")

	// ErrDeviceNotReady is returned for operations issued before successful
	// initialization, outside a frame, or when a backend reports the hardware
	// is not ready.
	ErrDeviceNotReady = errors.New("overlay: device not ready")

	// ErrNotSupported is returned when no backend exists for a vendor.
	ErrNotSupported = errors.New("overlay: not supported")

	// ErrDeviceNotFound is returned when device enumeration finds no
	// recognized display controller. It is terminal and never retried.
	ErrDeviceNotFound = errors.New("overlay: device not found")

	// ErrUnsuccessful is returned for generic mapping or hardware failures.
	ErrUnsuccessful = errors.New("overlay: unsuccessful")
)
