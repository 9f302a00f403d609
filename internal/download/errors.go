package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrClientUnavailable is returned when the back-end cannot be reached.
	ErrClientUnavailable = errors.New("download client unavailable")

	// ErrInvalidAPIKey is returned when the back-end rejects the API key.
	ErrInvalidAPIKey = errors.New("invalid api key")

	// ErrAuthFailed is returned when basic-auth credentials are rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrHistoryNotFound is returned when the back-end has no history
	// record for a queue id.
	ErrHistoryNotFound = errors.New("history record not found")

	// ErrNotFound is returned when a ledger entry does not exist.
	ErrNotFound = errors.New("requested item not found")

	// ErrNoClient is returned when no download client matches a name.
	ErrNoClient = errors.New("no such download client")
)
