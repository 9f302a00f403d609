// Package library tracks requested and imported media items.
package library

import "time"

// Status tracks a library item's lifecycle.
type Status string

const (
	StatusRequested Status = "requested"
	StatusAvailable Status = "available"
)

// Item is one movie (or series entry) known to the library. Items are
// created as Requested at grab time and become Available once the
// import executor has placed a file. This pipeline never deletes them.
type Item struct {
	ID         int64
	Title      string
	Year       int
	TMDBID     *int64
	Status     Status
	RootFolder string
	FilePath   string
	AddedAt    time.Time
}
