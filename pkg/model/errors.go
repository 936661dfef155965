package model

import (
	"errors"
)

// Error kinds surfaced to the top-level handler. Components wrap these with
// github.com/pkg/errors so that errors.Is still matches at the CLI boundary.
var (
	// ErrInvalidInput means a bad URL, a missing query parameter, or a
	// metadata response lacking required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable means an auth or network failure talking to
	// Google Drive or the metadata APIs.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMalformedFeed means an existing remote feed could not be parsed.
	ErrMalformedFeed = errors.New("malformed feed")

	// ErrMediaFetchFailed means the external fetch command is missing or
	// exited with a non-zero status.
	ErrMediaFetchFailed = errors.New("media fetch failed")

	// ErrTranscriptUnavailable means no transcript exists in any of the
	// requested languages.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
)
