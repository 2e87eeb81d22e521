// Package common defines sentinel errors shared by repositories, services
// and the transport layer. Callers should use errors.Is to match them.
package common

import "errors"

var (

	// repository specific errors
	ErrNotFound = errors.New("not found")

	// ErrTaskConflict is returned when an active chunk upload task already
	// exists for the identifier. Expected and retryable once the first
	// task is merged, not an alarm.
	ErrTaskConflict = errors.New("upload task already exists")

	// ErrChunksIncomplete is returned by merge when the backend reports a
	// part count different from the planned chunk count. Retryable.
	ErrChunksIncomplete = errors.New("chunks not fully uploaded")

	// ErrBackendFailure wraps storage failures (network, auth or service
	// errors) surfaced across the service boundary.
	ErrBackendFailure = errors.New("storage backend failure")

	// ErrUnsupported is reported by backend variants that do not implement
	// chunked upload.
	ErrUnsupported = errors.New("operation not supported by storage backend")
)
