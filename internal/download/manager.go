package download

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Library creates and updates library records as downloads progress.
type Library interface {
	EnsureRequested(title string, year int) error
}

// GrabRequest is a selected release ready to hand to a back-end.
type GrabRequest struct {
	Title          string
	Year           int
	ReleaseName    string
	DownloadURL    string
	Category       string
	Score          int
	ScoreBreakdown string
}

// Manager hands selected releases to download clients and records them
// in the ledger.
type Manager struct {
	clients map[string]Client
	tracker *Tracker
	library Library
	log     *slog.Logger
}

// NewManager creates a manager over the configured clients.
func NewManager(clients []Client, tracker *Tracker, library Library, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	byName := make(map[string]Client, len(clients))
	for _, c := range clients {
		byName[c.Name()] = c
	}
	return &Manager{
		clients: byName,
		tracker: tracker,
		library: library,
		log:     log.With("component", "download-manager"),
	}
}

// Client returns the configured client with the given name.
func (m *Manager) Client(name string) (Client, error) {
	c, ok := m.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoClient, name)
	}
	return c, nil
}

// Clients returns all configured clients.
func (m *Manager) Clients() []Client {
	out := make([]Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out
}

// Grab sends a release to the named client and records it in the
// ledger. The client call goes first: an orphan in the back-end is
// recoverable, a ledger entry with no real download is not.
func (m *Manager) Grab(ctx context.Context, clientName string, req GrabRequest) (*RequestedItem, error) {
	client, err := m.Client(clientName)
	if err != nil {
		return nil, err
	}

	queueID, err := client.AddByURL(ctx, req.DownloadURL, req.ReleaseName, req.Category)
	if err != nil {
		m.log.Error("grab failed", "client", clientName, "release", req.ReleaseName, "error", err)
		return nil, fmt.Errorf("add to client: %w", err)
	}

	item := RequestedItem{
		QueueID:        queueID,
		ClientName:     clientName,
		Title:          req.Title,
		Year:           req.Year,
		Score:          req.Score,
		ScoreBreakdown: req.ScoreBreakdown,
		RequestedAt:    time.Now(),
	}
	if err := m.tracker.Record(item); err != nil {
		return nil, fmt.Errorf("record requested item: %w", err)
	}

	if err := m.library.EnsureRequested(req.Title, req.Year); err != nil {
		return nil, fmt.Errorf("mark library item requested: %w", err)
	}

	m.log.Info("grab sent", "client", clientName, "release", req.ReleaseName,
		"queue_id", queueID, "score", req.Score)
	return &item, nil
}

// Remove deletes a tracked entry from the back-end's queue and drops it
// from the ledger in the same locked section, so the next reconcile pass
// never classifies the removal as a completed or failed download.
func (m *Manager) Remove(ctx context.Context, clientName, queueID string) error {
	client, err := m.Client(clientName)
	if err != nil {
		return err
	}

	return m.tracker.WithClientLock(clientName, func() error {
		if _, err := m.tracker.Lookup(clientName, queueID); err != nil {
			return err
		}
		if err := client.Remove(ctx, []string{queueID}); err != nil {
			return fmt.Errorf("remove from client: %w", err)
		}
		if err := m.tracker.Delete(clientName, queueID); err != nil {
			return err
		}
		m.log.Info("removed from queue", "client", clientName, "queue_id", queueID)
		return nil
	})
}

// TrackedQueue returns the client's live queue filtered to entries this
// system requested. Unrelated downloads sharing the back-end never
// leak through.
func (m *Manager) TrackedQueue(ctx context.Context, clientName string) ([]QueueItem, error) {
	client, err := m.Client(clientName)
	if err != nil {
		return nil, err
	}

	live, err := client.Queue(ctx)
	if err != nil {
		return nil, err
	}

	ours, err := m.tracker.CurrentIDs(clientName)
	if err != nil {
		return nil, err
	}

	filtered := make([]QueueItem, 0, len(live))
	for _, item := range live {
		if ours[item.ID] {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}
