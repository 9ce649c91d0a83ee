package reader

import "errors"

// Error kinds returned by Service. Callers discriminate with errors.Is; the
// wrapped message carries the specifics.
var (
	ErrSourceUnavailable = errors.New("book source unavailable")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrImportFailure     = errors.New("book import failed")
	ErrValidation        = errors.New("invalid input")
)
