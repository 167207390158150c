package archive

import "github.com/rotisserie/eris"

// Error kinds shared across the store, search, and transport layers.
// Callers match with errors.Is; wrapping preserves the kind.
var (
	// ErrExtractionEmpty means the markup parsed but yielded zero usable
	// message blocks — almost always a wrong or unrecognized export format.
	ErrExtractionEmpty = eris.New("no message blocks recognized in input")

	// ErrUnknownDataset means a fileId lookup found nothing, in the cache
	// or the durable backend.
	ErrUnknownDataset = eris.New("unknown dataset")

	// ErrInvalidQuery means malformed pagination or match-mode values.
	// Invalid pagination is rejected, never clamped.
	ErrInvalidQuery = eris.New("invalid query")

	// ErrOversizedInput means raw markup exceeded the configured cap.
	ErrOversizedInput = eris.New("input exceeds configured size limit")

	// ErrStorageUnavailable wraps durable-store I/O failures. Not retried
	// here; retry policy belongs to the caller.
	ErrStorageUnavailable = eris.New("storage unavailable")
)
