package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/grabarr/pkg/release"
)

// Store provides access to library items.
type Store struct {
	db *sql.DB
}

// NewStore creates a library store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapSQLiteError converts SQLite errors to package error types.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	// modernc.org/sqlite wraps errors; check the message for constraints
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed") {
		return ErrDuplicate
	}
	return err
}

// EnsureRequested creates the item as Requested if no item with the
// same title and year exists. An existing item is left untouched so a
// re-request never demotes an Available item.
func (s *Store) EnsureRequested(title string, year int) error {
	_, err := s.db.Exec(`
		INSERT INTO library_items (title, year, status, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (title, year) DO NOTHING`,
		title, year, StatusRequested, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("ensure requested: %w", mapSQLiteError(err))
	}
	return nil
}

// Add inserts a new item, setting its ID.
func (s *Store) Add(item *Item) error {
	now := time.Now()
	if item.Status == "" {
		item.Status = StatusRequested
	}
	result, err := s.db.Exec(`
		INSERT INTO library_items (title, year, tmdb_id, status, root_folder, file_path, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Title, item.Year, item.TMDBID, item.Status, item.RootFolder, item.FilePath, now,
	)
	if err != nil {
		return fmt.Errorf("insert library item: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	item.ID = id
	item.AddedAt = now
	return nil
}

// Get returns the item with the given id.
func (s *Store) Get(id int64) (*Item, error) {
	return s.scanOne(s.db.QueryRow(selectColumns+` WHERE id = ?`, id))
}

// GetByTitleYear returns the item matching title and year exactly.
func (s *Store) GetByTitleYear(title string, year int) (*Item, error) {
	return s.scanOne(s.db.QueryRow(selectColumns+` WHERE title = ? AND year = ?`, title, year))
}

// Resolve finds the item for a title and year, tolerating punctuation
// and casing differences by falling back to a clean-title comparison,
// then to a fuzzy match over the same-year items. Only a high-confidence
// fuzzy result is accepted; anything weaker is not one of ours.
func (s *Store) Resolve(title string, year int) (*Item, error) {
	item, err := s.GetByTitleYear(title, year)
	if err == nil {
		return item, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	items, err := s.listByYear(year)
	if err != nil {
		return nil, err
	}
	want := release.CleanTitle(title)
	for i := range items {
		if release.CleanTitle(items[i].Title) == want {
			return &items[i], nil
		}
	}

	candidates := make([]string, len(items))
	for i := range items {
		candidates[i] = items[i].Title
	}
	match := release.MatchTitle(title, candidates)
	if match.Confidence == release.ConfidenceHigh {
		for i := range items {
			if items[i].Title == match.Title {
				return &items[i], nil
			}
		}
	}
	return nil, ErrNotFound
}

// MarkAvailable transitions the item to Available with its final path.
func (s *Store) MarkAvailable(id int64, filePath string) error {
	result, err := s.db.Exec(`
		UPDATE library_items SET status = ?, file_path = ? WHERE id = ?`,
		StatusAvailable, filePath, id,
	)
	if err != nil {
		return fmt.Errorf("mark available: %w", mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every library item, newest first.
func (s *Store) List() ([]Item, error) {
	rows, err := s.db.Query(selectColumns + ` ORDER BY added_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list library items: %w", err)
	}
	return scanItems(rows)
}

func (s *Store) listByYear(year int) ([]Item, error) {
	rows, err := s.db.Query(selectColumns+` WHERE year = ?`, year)
	if err != nil {
		return nil, fmt.Errorf("list library items by year: %w", err)
	}
	return scanItems(rows)
}

const selectColumns = `
	SELECT id, title, year, tmdb_id, status, root_folder, file_path, added_at
	FROM library_items`

func (s *Store) scanOne(row *sql.Row) (*Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Title, &item.Year, &item.TMDBID,
		&item.Status, &item.RootFolder, &item.FilePath, &item.AddedAt)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer func() { _ = rows.Close() }()

	var items []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.Title, &item.Year, &item.TMDBID,
			&item.Status, &item.RootFolder, &item.FilePath, &item.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("scan library item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
