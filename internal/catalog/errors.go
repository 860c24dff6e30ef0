package catalog

import "errors"

var (
	// ErrStoreUnavailable is returned by a Store that has no usable connection.
	// The engine treats it as "no effect" rather than a failure.
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrDuplicateProduct is returned when an insert loses a race on the unique product name.
	ErrDuplicateProduct = errors.New("duplicate product")
)
