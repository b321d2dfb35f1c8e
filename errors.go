// Package imageloader provides client-side image retrieval and caching.
// This file contains domain-specific error types for image cache operations.
package imageloader

import (
	"errors"
	"fmt"
)

// Sentinel errors for different failure modes.
// These are used to identify specific types of failures in image cache operations.
// They can be checked using errors.Is() for error handling and testing.
var (
	// ErrUnableToDecodeImage indicates that downloaded or cached bytes could not
	// be decoded into an image. This could be due to truncated downloads, an
	// unsupported image format, or corrupted data on disk.
	ErrUnableToDecodeImage = errors.New("unable to decode image")

	// ErrUnableToEncodeImage indicates that a decoded image could not be
	// re-encoded for persistence. This is rare in practice and usually points
	// at an image with zero-area bounds or an exotic color model.
	ErrUnableToEncodeImage = errors.New("unable to encode image")

	// ErrUnableToGenerateStoragePath indicates that no on-disk location could be
	// derived for a locator. This occurs when the storage root cannot be
	// resolved or the locator encodes to an unusable file name.
	ErrUnableToGenerateStoragePath = errors.New("unable to generate storage path")

	// ErrEmptyLocator indicates that a fetch was requested with an empty
	// locator string. Locators identify images and must be non-empty.
	ErrEmptyLocator = errors.New("locator must not be empty")
)

// FetchError provides detailed context about image fetch failures.
// It wraps underlying errors with additional context specific to cache
// operations, including the operation stage and the locator being processed.
//
// FetchError implements the error interface and supports error wrapping,
// allowing it to be used with errors.Is() and errors.As() for proper error handling.
type FetchError struct {
	// Op describes the operation stage that failed (e.g., "fetch", "decode",
	// "encode", "persist").
	Op string

	// Locator is the image locator being processed when the error occurred.
	// This is typically a URL like "https://img.example.com/banner.jpg".
	Locator string

	// Err is the underlying error that caused this FetchError to be created.
	// This preserves the original error context and allows for proper error wrapping.
	// Network errors are carried here verbatim so callers can still inspect them.
	Err error
}

// Error implements the error interface.
// It returns the error message from the underlying error to maintain compatibility
// with existing error handling code that expects the underlying error message.
func (e *FetchError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error to support error wrapping.
// This allows FetchError to be used with errors.Is() and errors.As()
// for checking error types and extracting wrapped errors.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError with the specified context.
// This is a convenience function for creating FetchError instances.
//
// Parameters:
//   - op: The operation stage that failed (e.g., "fetch", "decode")
//   - locator: The image locator being processed
//   - err: The underlying error
//
// Returns a pointer to the new FetchError.
func NewFetchError(op, locator string, err error) *FetchError {
	return &FetchError{
		Op:      op,
		Locator: locator,
		Err:     err,
	}
}

// FormatError creates a formatted error message with FetchError context.
// This is useful for logging or displaying errors with full context.
//
// The format includes the operation, locator, and underlying error message.
// Example output: "decode https://img.example.com/banner.jpg: unable to decode image"
func (e *FetchError) FormatError() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Locator, e.Err.Error())
}

// IsDecodeError checks if this error or any wrapped error is a decode failure.
// This is a convenience method for quickly identifying undecodable payloads.
//
// Returns true if ErrUnableToDecodeImage is found in the error chain.
func (e *FetchError) IsDecodeError() bool {
	return errors.Is(e.Err, ErrUnableToDecodeImage)
}

// IsStorageError checks if this error or any wrapped error relates to persistent
// storage. This is a convenience method for distinguishing local storage issues
// from network failures.
//
// Returns true if any storage-related error is found in the error chain:
//   - ErrUnableToEncodeImage
//   - ErrUnableToGenerateStoragePath
func (e *FetchError) IsStorageError() bool {
	return errors.Is(e.Err, ErrUnableToEncodeImage) ||
		errors.Is(e.Err, ErrUnableToGenerateStoragePath)
}
