package search

import "errors"

var (
	// ErrNoIndexers is returned when no indexers are configured.
	ErrNoIndexers = errors.New("no indexers configured")

	// ErrNoResults indicates the indexers returned nothing at all.
	// Informational, not a transport failure.
	ErrNoResults = errors.New("no releases found")

	// ErrNoQualifyingRelease indicates releases were found but none
	// passed the quality profile and score gate. Distinct from
	// ErrNoResults so callers can explain why nothing was grabbed.
	ErrNoQualifyingRelease = errors.New("no qualifying release")
)
