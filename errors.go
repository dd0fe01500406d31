package plume

import "errors"

var (
	// ErrSinkNotFound is returned by GetSink for an id that was never
	// created.
	ErrSinkNotFound = errors.New("plume: sink not found")

	// ErrConfigMismatch is returned when an id or name is re-requested
	// with a configuration different from the one it was created with.
	// The first creation wins; a silent second configuration would be
	// a bug in the caller.
	ErrConfigMismatch = errors.New("plume: id already registered with a different configuration")

	// ErrBackendStopped is returned for registry operations on a
	// stopped backend.
	ErrBackendStopped = errors.New("plume: backend stopped")
)
