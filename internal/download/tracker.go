package download

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Tracker is the durable ledger of queue entries this system requested.
// Entries are keyed (client name, queue id) because queue ids are only
// unique within one back-end. All read-modify-write access to one
// client's entries is serialized by a per-client-name lock.
type Tracker struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTracker creates a tracker backed by the given database.
func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// clientLock returns the lock serializing access to one client's ledger.
func (t *Tracker) clientLock(clientName string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[clientName]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[clientName] = lock
	}
	return lock
}

// WithClientLock runs fn while holding the client's ledger lock. The
// reconciler uses it to make diff-then-delete atomic against a
// concurrent Record for the same client.
func (t *Tracker) WithClientLock(clientName string, fn func() error) error {
	lock := t.clientLock(clientName)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// Record upserts a ledger entry. Re-requesting the same queue id
// updates its display fields.
func (t *Tracker) Record(item RequestedItem) error {
	lock := t.clientLock(item.ClientName)
	lock.Lock()
	defer lock.Unlock()

	if item.RequestedAt.IsZero() {
		item.RequestedAt = time.Now()
	}

	_, err := t.db.Exec(`
		INSERT INTO requested_items (client_name, queue_id, title, year, score, score_breakdown, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_name, queue_id) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			score = excluded.score,
			score_breakdown = excluded.score_breakdown`,
		item.ClientName, item.QueueID, item.Title, item.Year,
		item.Score, item.ScoreBreakdown, item.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("record requested item: %w", err)
	}
	return nil
}

// Lookup returns the ledger entry for a queue id.
func (t *Tracker) Lookup(clientName, queueID string) (*RequestedItem, error) {
	item := RequestedItem{ClientName: clientName, QueueID: queueID}
	err := t.db.QueryRow(`
		SELECT title, year, score, score_breakdown, requested_at
		FROM requested_items
		WHERE client_name = ? AND queue_id = ?`,
		clientName, queueID,
	).Scan(&item.Title, &item.Year, &item.Score, &item.ScoreBreakdown, &item.RequestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup requested item: %w", err)
	}
	return &item, nil
}

// CurrentIDs returns the set of queue ids recorded for a client.
func (t *Tracker) CurrentIDs(clientName string) (map[string]bool, error) {
	rows, err := t.db.Query(`
		SELECT queue_id FROM requested_items WHERE client_name = ?`,
		clientName,
	)
	if err != nil {
		return nil, fmt.Errorf("list requested ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan queue id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Delete removes a ledger entry. Deleting an absent entry is a no-op.
func (t *Tracker) Delete(clientName, queueID string) error {
	_, err := t.db.Exec(`
		DELETE FROM requested_items WHERE client_name = ? AND queue_id = ?`,
		clientName, queueID,
	)
	if err != nil {
		return fmt.Errorf("delete requested item: %w", err)
	}
	return nil
}
