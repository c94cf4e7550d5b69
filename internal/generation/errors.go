package generation

import "errors"

// Failure kinds of a completion call. Callers treat every one of them as a
// signal to use their deterministic fallback.
var (
	// ErrConfigurationMissing is returned when no usable credential is configured.
	ErrConfigurationMissing = errors.New("completion credential not configured")

	// ErrTransport is returned on network failures, timeouts, and non-2xx
	// responses.
	ErrTransport = errors.New("completion transport failure")

	// ErrEmptyCompletion is returned when the response carries no usable
	// content: no choices, blank text, or content withheld by safety filters.
	ErrEmptyCompletion = errors.New("completion returned no content")

	// ErrInvalidConfig is returned by client constructors for unusable settings.
	ErrInvalidConfig = errors.New("invalid completion client configuration")
)

// IsFallbackTrigger reports whether err is one of the completion failure kinds.
func IsFallbackTrigger(err error) bool {
	return errors.Is(err, ErrConfigurationMissing) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrEmptyCompletion)
}
