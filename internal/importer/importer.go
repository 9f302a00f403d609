// Package importer moves completed downloads into the library with
// deterministic names.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vmunix/grabarr/internal/library"
	"github.com/vmunix/grabarr/pkg/naming"
	"github.com/vmunix/grabarr/pkg/release"
)

// Config for the importer.
type Config struct {
	DefaultRoot  string
	MovieFormat  string
	FolderFormat string
	ColonMode    naming.ColonMode
	MinVideoSize int64
	PathMappings []PathMapping
}

// Importer executes imports of completed downloads.
type Importer struct {
	library *library.Store
	history *HistoryStore
	prober  Prober // nil if not configured
	cfg     Config
	log     *slog.Logger
}

// New creates an importer. prober may be nil.
func New(lib *library.Store, history *HistoryStore, prober Prober, cfg Config, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MovieFormat == "" {
		cfg.MovieFormat = naming.DefaultMovieFormat
	}
	if cfg.FolderFormat == "" {
		cfg.FolderFormat = naming.DefaultFolderFormat
	}
	return &Importer{
		library: lib,
		history: history,
		prober:  prober,
		cfg:     cfg,
		log:     log.With("component", "importer"),
	}
}

// Import places a completed download into the library: resolve the
// library item, translate the download path, pick the media file,
// compute its final name, move it, and clean up the source. Failures
// leave the item Requested so a later poll can retry the import.
func (i *Importer) Import(ctx context.Context, clientName, title string, year int, downloadPath string) error {
	err := i.run(ctx, clientName, title, year, downloadPath)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		if histErr := i.history.Add(&HistoryEntry{
			Event:      EventImportFailed,
			MediaTitle: title,
			Year:       year,
			Detail:     err.Error(),
		}); histErr != nil {
			i.log.Error("record history", "title", title, "error", histErr)
		}
	}
	return err
}

func (i *Importer) run(ctx context.Context, clientName, title string, year int, downloadPath string) error {
	start := time.Now()
	i.log.Info("import started", "title", title, "year", year, "path", downloadPath)

	item, err := i.library.Resolve(title, year)
	if errors.Is(err, library.ErrNotFound) {
		// Not one of ours. No side effects.
		return fmt.Errorf("%w: %s (%d)", ErrItemNotFound, title, year)
	}
	if err != nil {
		return fmt.Errorf("resolve library item: %w", err)
	}

	root, err := i.resolveRoot(item)
	if err != nil {
		return err
	}

	localPath := TranslatePath(clientName, downloadPath, i.cfg.PathMappings)

	videoPath, videoSize, err := FindLargestVideo(localPath, i.cfg.MinVideoSize)
	if err != nil {
		return fmt.Errorf("locate video in %s: %w", localPath, err)
	}

	folderName, fileName := i.destinationNames(item, localPath, filepath.Ext(videoPath))
	destPath := filepath.Join(root, folderName, fileName)

	moved := true
	if err := MoveFile(videoPath, destPath); err != nil {
		if !errors.Is(err, ErrDestinationExists) {
			return fmt.Errorf("move %s: %w", videoPath, err)
		}
		// Already imported, likely by a previous interrupted run.
		moved = false
		i.log.Info("destination already exists, treating as imported", "dest", destPath)
	}

	if err := i.library.MarkAvailable(item.ID, destPath); err != nil {
		return fmt.Errorf("mark available: %w", err)
	}

	if err := i.history.Add(&HistoryEntry{
		Event:      EventImported,
		MediaTitle: item.Title,
		Year:       item.Year,
		Detail:     destPath,
	}); err != nil {
		i.log.Error("record history", "title", item.Title, "error", err)
	}

	if i.prober != nil {
		if err := i.prober.Probe(ctx, destPath); err != nil {
			i.log.Warn("probe failed", "path", destPath, "error", err)
		}
	}

	if moved && localPath != videoPath {
		if err := i.cleanupSource(localPath, root); err != nil {
			i.log.Warn("cleanup skipped", "path", localPath, "error", err)
		}
	}

	i.log.Info("import complete", "title", item.Title, "dest", destPath,
		"size", videoSize, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// resolveRoot picks the destination root: the item's own root folder
// when it exists on disk, otherwise the configured default. It fails
// only when neither exists.
func (i *Importer) resolveRoot(item *library.Item) (string, error) {
	if item.RootFolder != "" {
		if info, err := os.Stat(item.RootFolder); err == nil && info.IsDir() {
			return item.RootFolder, nil
		}
		i.log.Warn("item root folder unavailable, falling back to default",
			"root", item.RootFolder, "default", i.cfg.DefaultRoot)
	}
	if i.cfg.DefaultRoot != "" {
		if info, err := os.Stat(i.cfg.DefaultRoot); err == nil && info.IsDir() {
			return i.cfg.DefaultRoot, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNoRootFolder, i.cfg.DefaultRoot)
	}
	return "", fmt.Errorf("%w: %s", ErrNoRootFolder, item.RootFolder)
}

// destinationNames renders folder and file names from the naming
// formats, falling back to a bare "Title (Year)" scheme when the
// rendered name sanitizes to nothing.
func (i *Importer) destinationNames(item *library.Item, downloadPath, ext string) (string, string) {
	info := release.Parse(filepath.Base(downloadPath))
	tokens := map[string]string{
		"Title":      item.Title,
		"Year":       strconv.Itoa(item.Year),
		"Resolution": info.Resolution.String(),
		"Source":     info.Source.String(),
		"Codec":      info.Codec.String(),
		"Group":      info.Group,
		"Edition":    info.Edition,
	}

	fallback := naming.Sanitize(fmt.Sprintf("%s (%d)", item.Title, item.Year), naming.ColonDelete, true)

	folder := naming.Sanitize(naming.Apply(i.cfg.FolderFormat, tokens), i.cfg.ColonMode, true)
	if folder == "" {
		folder = fallback
	}

	file := naming.Sanitize(naming.Apply(i.cfg.MovieFormat, tokens), i.cfg.ColonMode, false)
	if file == "" {
		file = fallback
	}

	return folder, file + ext
}

// cleanupSource removes the drained download directory, guarded so the
// library root and shallow paths are never deleted.
func (i *Importer) cleanupSource(downloadPath, root string) error {
	info, err := os.Stat(downloadPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}
	return RemoveDownloadDir(downloadPath, []string{root, i.cfg.DefaultRoot})
}
