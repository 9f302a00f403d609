// Package search handles indexer queries, custom format scoring, and
// quality-aware release selection.
package search

import (
	"time"
)

// Release is a candidate download offered by an indexer. It lives only
// for the duration of one selection decision.
type Release struct {
	Title       string
	Indexer     string
	GUID        string
	DownloadURL string
	Size        int64
	PublishDate time.Time
}

// Query specifies what to search for.
type Query struct {
	Text    string
	Year    int
	Type    string // "movie" or "series"
	Season  *int
	Episode *int
}

// Selection is the outcome of choosing the best release for a query.
type Selection struct {
	Release   Release
	Score     int
	Breakdown string
}
