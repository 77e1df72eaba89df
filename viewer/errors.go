package viewer

import "errors"

var (
	// ErrTranslationInFlight rejects a joke refetch while a translation runs.
	ErrTranslationInFlight = errors.New("viewer: translation in progress")

	// ErrUnknownLanguage is returned when selecting a code the catalog lacks.
	ErrUnknownLanguage = errors.New("viewer: unknown language")

	// ErrNoLanguages marks a catalog that is empty after filtering.
	ErrNoLanguages = errors.New("viewer: no target languages available")

	// ErrClosed is returned by operations on a closed orchestrator or registry.
	ErrClosed = errors.New("viewer: closed")
)
