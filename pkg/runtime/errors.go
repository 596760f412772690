package runtime

import "errors"

var (
	// ErrFieldNotFound is returned when no view exists for an id.
	ErrFieldNotFound = errors.New("runtime: field not found")
	// ErrNotRepeatable is returned when an id does not resolve to an instance
	// manager or one of its instances.
	ErrNotRepeatable = errors.New("runtime: field is not repeatable")
	// ErrNotInput is returned when a value is assigned to a non-input item.
	ErrNotInput = errors.New("runtime: field does not hold a value")
	// ErrOutOfSync is wrapped by every mismatch Verify reports.
	ErrOutOfSync = errors.New("runtime: model and view out of sync")
)
