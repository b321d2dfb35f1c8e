package store

import "errors"

// Storage errors returned by path derivation and blob access.
var (
	// ErrNoStorageRoot indicates the storage root directory could not be resolved.
	ErrNoStorageRoot = errors.New("storage root cannot be resolved")

	// ErrUnsafeName indicates a locator did not encode to a usable file name.
	ErrUnsafeName = errors.New("locator does not encode to a safe file name")
)
