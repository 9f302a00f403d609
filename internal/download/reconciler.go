package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Importer moves a completed download into the library.
type Importer interface {
	Import(ctx context.Context, clientName, title string, year int, downloadPath string) error
}

// Blocklister records failed releases so they are never selected again.
type Blocklister interface {
	Add(mediaTitle string, year int, sourceTitle, reason string) error
}

// Reconciler diffs a back-end's live queue against the ledger and
// classifies every departed item: completed downloads are imported,
// failed ones blocklisted, unclassifiable ones dropped with a warning.
type Reconciler struct {
	tracker   *Tracker
	importer  Importer
	blocklist Blocklister
	log       *slog.Logger

	imports sync.WaitGroup
}

// NewReconciler creates a reconciler.
func NewReconciler(tracker *Tracker, importer Importer, blocklist Blocklister, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		tracker:   tracker,
		importer:  importer,
		blocklist: blocklist,
		log:       log.With("component", "reconciler"),
	}
}

// Reconcile processes every ledger entry for the client that is absent
// from liveIDs. Each departed item is handled exactly once: the entry
// is deleted from the ledger in the same locked section that classifies
// it, so a second call with the same snapshot finds nothing to do.
func (r *Reconciler) Reconcile(ctx context.Context, client Client, liveIDs map[string]bool) error {
	clientName := client.Name()

	return r.tracker.WithClientLock(clientName, func() error {
		recorded, err := r.tracker.CurrentIDs(clientName)
		if err != nil {
			return err
		}

		for queueID := range recorded {
			if liveIDs[queueID] {
				continue
			}

			item, err := r.tracker.Lookup(clientName, queueID)
			if err != nil {
				r.log.Error("lookup departed item", "client", clientName,
					"queue_id", queueID, "error", err)
				continue
			}

			if err := r.onItemLeftQueue(ctx, client, item); err != nil {
				// Transient history failure. Keep the ledger entry so the
				// next poll retries classification.
				r.log.Warn("classify departed item", "client", clientName,
					"queue_id", queueID, "error", err)
				continue
			}

			if err := r.tracker.Delete(clientName, queueID); err != nil {
				r.log.Error("drop ledger entry", "client", clientName,
					"queue_id", queueID, "error", err)
			}
		}
		return nil
	})
}

// onItemLeftQueue classifies one departed item by its history record. A
// returned error means no verdict could be fetched and the item must
// stay in the ledger.
func (r *Reconciler) onItemLeftQueue(ctx context.Context, client Client, item *RequestedItem) error {
	history, err := client.History(ctx, item.QueueID)
	if errors.Is(err, ErrHistoryNotFound) {
		// No terminal verdict to act on. Dropping tracking without
		// importing or blocklisting is the conservative choice.
		r.log.Warn("departed item has no history record",
			"client", item.ClientName, "queue_id", item.QueueID, "title", item.Title)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	if history.Status != HistoryCompleted {
		reason := history.FailReason
		if reason == "" {
			reason = "download failed"
		}
		r.log.Info("download failed, blocklisting",
			"client", item.ClientName, "source_title", history.Title, "reason", reason)
		if err := r.blocklist.Add(item.Title, item.Year, history.Title, reason); err != nil {
			r.log.Error("add blocklist entry", "source_title", history.Title, "error", err)
		}
		return nil
	}

	// Import on its own goroutine so a slow file move never delays
	// reconciliation of the next item or client.
	clientName := item.ClientName
	title, year := item.Title, item.Year
	path := history.StoragePath
	// Detached from the poll context: an in-flight move finishes even
	// when shutdown cancels the poller.
	importCtx := context.WithoutCancel(ctx)
	r.imports.Add(1)
	go func() {
		defer r.imports.Done()
		if err := r.importer.Import(importCtx, clientName, title, year, path); err != nil {
			r.log.Error("import failed", "title", title, "path", path, "error", err)
		}
	}()
	return nil
}

// Wait blocks until all in-flight imports have finished. Called during
// shutdown so moves are never interrupted mid-file.
func (r *Reconciler) Wait() {
	r.imports.Wait()
}
