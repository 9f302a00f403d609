// Package blocklist records failed releases so the same bad release is
// never selected again.
package blocklist

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Entry is one blocklisted release.
type Entry struct {
	ID          int64
	SourceTitle string
	MediaTitle  string
	Year        int
	Reason      string
	DateAdded   time.Time
}

// Store persists blocklist entries. The source title is the dedup key,
// compared case-insensitively.
type Store struct {
	db *sql.DB
}

// NewStore creates a blocklist store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add records a failed release. Adding a source title that is already
// blocklisted, in any casing, is a no-op.
func (s *Store) Add(mediaTitle string, year int, sourceTitle, reason string) error {
	_, err := s.db.Exec(`
		INSERT INTO blocklist (source_title, media_title, year, reason, date_added)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source_title COLLATE NOCASE) DO NOTHING`,
		sourceTitle, mediaTitle, year, reason, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert blocklist entry: %w", err)
	}
	return nil
}

// Remove deletes the entries with the given source titles. Titles with
// no entry are ignored.
func (s *Store) Remove(sourceTitles []string) error {
	if len(sourceTitles) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sourceTitles)), ",")
	args := make([]any, len(sourceTitles))
	for i, title := range sourceTitles {
		args[i] = title
	}

	_, err := s.db.Exec(`
		DELETE FROM blocklist WHERE source_title COLLATE NOCASE IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("delete blocklist entries: %w", err)
	}
	return nil
}

// ActiveTitles returns every blocklisted source title, lowercased, as a
// set for candidate exclusion.
func (s *Store) ActiveTitles() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT source_title FROM blocklist`)
	if err != nil {
		return nil, fmt.Errorf("list blocklist titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	titles := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan blocklist title: %w", err)
		}
		titles[strings.ToLower(title)] = true
	}
	return titles, rows.Err()
}

// List returns all entries, newest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, source_title, media_title, year, reason, date_added
		FROM blocklist
		ORDER BY date_added DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blocklist: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SourceTitle, &e.MediaTitle, &e.Year, &e.Reason, &e.DateAdded); err != nil {
			return nil, fmt.Errorf("scan blocklist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry for a source title.
func (s *Store) Get(sourceTitle string) (*Entry, error) {
	var e Entry
	err := s.db.QueryRow(`
		SELECT id, source_title, media_title, year, reason, date_added
		FROM blocklist
		WHERE source_title = ? COLLATE NOCASE`,
		sourceTitle,
	).Scan(&e.ID, &e.SourceTitle, &e.MediaTitle, &e.Year, &e.Reason, &e.DateAdded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blocklist entry: %w", err)
	}
	return &e, nil
}
