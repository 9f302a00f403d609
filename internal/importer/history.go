package importer

import (
	"database/sql"
	"fmt"
	"time"
)

// Event types for history records.
const (
	EventGrabbed      = "grabbed"
	EventImported     = "imported"
	EventBlocklisted  = "blocklisted"
	EventImportFailed = "import_failed"
)

// HistoryEntry is one pipeline event for a media item.
type HistoryEntry struct {
	ID         int64
	Event      string
	MediaTitle string
	Year       int
	Detail     string
	CreatedAt  time.Time
}

// HistoryStore persists history records.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a history store.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Add inserts a new history entry.
func (s *HistoryStore) Add(h *HistoryEntry) error {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO history (event, media_title, year, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		h.Event, h.MediaTitle, h.Year, h.Detail, now,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	h.ID = id
	h.CreatedAt = now
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 means
// no limit.
func (s *HistoryStore) List(limit int) ([]HistoryEntry, error) {
	query := `SELECT id, event, media_title, year, detail, created_at
		FROM history ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.Event, &h.MediaTitle, &h.Year, &h.Detail, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
