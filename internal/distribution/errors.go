package distribution

import "errors"

var (
	// ErrEmptyRoster is returned when assignment is attempted on a project
	// without members.
	ErrEmptyRoster = errors.New("project roster is empty")

	// ErrMalformedBatch is returned when the model output is not a JSON array
	// or none of its elements is usable. It triggers the fallback for the
	// whole batch.
	ErrMalformedBatch = errors.New("malformed task batch")

	// ErrMalformedElement marks a single unusable array element. Elements
	// failing with it are skipped.
	ErrMalformedElement = errors.New("malformed task proposal")
)
