package importer

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vmunix/grabarr/internal/library"
	"github.com/vmunix/grabarr/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

type recordingProber struct {
	paths []string
	err   error
}

func (p *recordingProber) Probe(_ context.Context, path string) error {
	p.paths = append(p.paths, path)
	return p.err
}

func TestImport_CompletedDownload(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)
	history := NewHistoryStore(db)

	root := t.TempDir()
	downloads := t.TempDir()
	source := filepath.Join(downloads, "Movie.Title.2024.1080p.WEB-DL-GRP")
	writeFile(t, filepath.Join(source, "movie.mkv"), 4096)
	writeFile(t, filepath.Join(source, "movie.nfo"), 64)

	if err := lib.EnsureRequested("Movie Title", 2024); err != nil {
		t.Fatalf("ensure requested: %v", err)
	}

	prober := &recordingProber{}
	imp := New(lib, history, prober, Config{DefaultRoot: root}, nil)

	err := imp.Import(context.Background(), "sab", "Movie Title", 2024, source)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	dest := filepath.Join(root, "Movie Title (2024)", "Movie Title (2024) WEBDL-1080p.mkv")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected file at %s: %v", dest, err)
	}

	item, err := lib.GetByTitleYear("Movie Title", 2024)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Status != library.StatusAvailable {
		t.Errorf("expected available, got %s", item.Status)
	}
	if item.FilePath != dest {
		t.Errorf("expected file path %s, got %s", dest, item.FilePath)
	}

	// Source folder was drained and removed.
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Error("expected source folder to be removed")
	}

	// History records the import; the probe ran against the new file.
	entries, err := history.List(0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 || entries[0].Event != EventImported {
		t.Errorf("expected one imported entry, got %+v", entries)
	}
	if len(prober.paths) != 1 || prober.paths[0] != dest {
		t.Errorf("expected probe of %s, got %v", dest, prober.paths)
	}
}

func TestImport_UnknownItemHasNoSideEffects(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)
	history := NewHistoryStore(db)

	root := t.TempDir()
	source := filepath.Join(t.TempDir(), "Stray.Download.2024")
	writeFile(t, filepath.Join(source, "movie.mkv"), 4096)

	imp := New(lib, history, nil, Config{DefaultRoot: root}, nil)
	err := imp.Import(context.Background(), "sab", "Stray Download", 2024, source)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(source, "movie.mkv")); err != nil {
		t.Error("source must be untouched")
	}
	entries, _ := history.List(0)
	if len(entries) != 0 {
		t.Errorf("expected no history, got %+v", entries)
	}
}

func TestImport_MissingRootFolder(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)

	if err := lib.EnsureRequested("Movie", 2024); err != nil {
		t.Fatalf("ensure requested: %v", err)
	}

	history := NewHistoryStore(db)
	imp := New(lib, history, nil, Config{DefaultRoot: "/nonexistent/root"}, nil)
	err := imp.Import(context.Background(), "sab", "Movie", 2024, t.TempDir())
	if !errors.Is(err, ErrNoRootFolder) {
		t.Fatalf("expected ErrNoRootFolder, got %v", err)
	}

	entries, _ := history.List(0)
	if len(entries) != 1 || entries[0].Event != EventImportFailed {
		t.Errorf("expected one import_failed entry, got %+v", entries)
	}

	// Import failure leaves the item Requested.
	item, err := lib.GetByTitleYear("Movie", 2024)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Status != library.StatusRequested {
		t.Errorf("expected requested, got %s", item.Status)
	}
}

func TestImport_MissingItemRootFallsBackToDefault(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)

	root := t.TempDir()
	source := filepath.Join(t.TempDir(), "Movie.2024.1080p.WEB-DL-GRP")
	writeFile(t, filepath.Join(source, "movie.mkv"), 4096)

	// The item's own root folder has vanished since it was recorded.
	item := &library.Item{Title: "Movie", Year: 2024, RootFolder: "/vanished/root"}
	if err := lib.Add(item); err != nil {
		t.Fatalf("add item: %v", err)
	}

	imp := New(lib, NewHistoryStore(db), nil, Config{DefaultRoot: root}, nil)
	if err := imp.Import(context.Background(), "sab", "Movie", 2024, source); err != nil {
		t.Fatalf("import: %v", err)
	}

	dest := filepath.Join(root, "Movie (2024)", "Movie (2024) WEBDL-1080p.mkv")
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("expected file under default root at %s: %v", dest, err)
	}
}

func TestImport_NoVideoFile(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)

	if err := lib.EnsureRequested("Movie", 2024); err != nil {
		t.Fatalf("ensure requested: %v", err)
	}

	source := filepath.Join(t.TempDir(), "Movie.2024-GRP")
	writeFile(t, filepath.Join(source, "movie.nfo"), 64)

	imp := New(lib, NewHistoryStore(db), nil, Config{DefaultRoot: t.TempDir()}, nil)
	err := imp.Import(context.Background(), "sab", "Movie", 2024, source)
	if !errors.Is(err, ErrNoVideoFile) {
		t.Fatalf("expected ErrNoVideoFile, got %v", err)
	}
}

func TestImport_ExistingDestinationTreatedAsImported(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)

	root := t.TempDir()
	source := filepath.Join(t.TempDir(), "Movie.2024.1080p.WEB-DL-GRP")
	writeFile(t, filepath.Join(source, "movie.mkv"), 4096)

	dest := filepath.Join(root, "Movie (2024)", "Movie (2024) WEBDL-1080p.mkv")
	writeFile(t, dest, 4096)

	if err := lib.EnsureRequested("Movie", 2024); err != nil {
		t.Fatalf("ensure requested: %v", err)
	}

	imp := New(lib, NewHistoryStore(db), nil, Config{DefaultRoot: root}, nil)
	if err := imp.Import(context.Background(), "sab", "Movie", 2024, source); err != nil {
		t.Fatalf("import: %v", err)
	}

	item, err := lib.GetByTitleYear("Movie", 2024)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Status != library.StatusAvailable {
		t.Errorf("expected available, got %s", item.Status)
	}

	// No move happened, so the source is kept for a human to inspect.
	if _, err := os.Stat(filepath.Join(source, "movie.mkv")); err != nil {
		t.Error("source must be untouched when destination already exists")
	}
}

func TestImport_PathMapping(t *testing.T) {
	db := setupTestDB(t)
	lib := library.NewStore(db)

	root := t.TempDir()
	local := t.TempDir()
	source := filepath.Join(local, "Movie.2024.720p.HDTV-GRP")
	writeFile(t, filepath.Join(source, "movie.mkv"), 4096)

	if err := lib.EnsureRequested("Movie", 2024); err != nil {
		t.Fatalf("ensure requested: %v", err)
	}

	imp := New(lib, NewHistoryStore(db), nil, Config{
		DefaultRoot: root,
		PathMappings: []PathMapping{
			{Client: "sab", RemotePath: "/remote/downloads", LocalPath: local},
		},
	}, nil)

	remote := "/remote/downloads/Movie.2024.720p.HDTV-GRP"
	if err := imp.Import(context.Background(), "sab", "Movie", 2024, remote); err != nil {
		t.Fatalf("import: %v", err)
	}

	dest := filepath.Join(root, "Movie (2024)", "Movie (2024) HDTV-720p.mkv")
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("expected file at %s: %v", dest, err)
	}
}
