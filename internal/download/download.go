// Package download abstracts the supported download back-ends behind a
// single queue contract and keeps a durable ledger of requested items.
package download

import (
	"context"
	"time"
)

// Kind identifies a download client back-end variant.
type Kind string

const (
	KindSABnzbd Kind = "sabnzbd"
	KindNZBGet  Kind = "nzbget"
)

// QueueItem is one entry in a back-end's live download queue.
type QueueItem struct {
	ID        string
	Title     string
	Category  string
	Size      int64
	Remaining int64
	Progress  float64 // 0-100
}

// HistoryStatus is a back-end's terminal verdict for a finished item.
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryFailed    HistoryStatus = "failed"
	HistoryUnknown   HistoryStatus = "unknown"
)

// HistoryItem is a back-end's history record for a departed queue entry.
type HistoryItem struct {
	ID          string
	Title       string
	Status      HistoryStatus
	StoragePath string
	FailReason  string
}

// Client is a download back-end. Both variants satisfy it; the concrete
// implementation is chosen once at configuration load.
type Client interface {
	// Name returns the configured client name, the ledger key.
	Name() string
	// AddByURL sends a download URL to the back-end and returns the
	// queue id it assigned.
	AddByURL(ctx context.Context, downloadURL, name, category string) (string, error)
	// Queue returns the back-end's live queue.
	Queue(ctx context.Context) ([]QueueItem, error)
	// History returns the terminal record for a queue id, or
	// ErrHistoryNotFound when the back-end has none.
	History(ctx context.Context, queueID string) (*HistoryItem, error)
	// Remove deletes entries from the back-end's queue.
	Remove(ctx context.Context, queueIDs []string) error
}

// RequestedItem is one ledger entry: a queue entry this system itself
// requested from a back-end.
type RequestedItem struct {
	QueueID        string
	ClientName     string
	Title          string
	Year           int
	Score          int
	ScoreBreakdown string
	RequestedAt    time.Time
}
