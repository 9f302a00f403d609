package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/grabarr/internal/api/v1"
	"github.com/vmunix/grabarr/internal/blocklist"
	"github.com/vmunix/grabarr/internal/config"
	"github.com/vmunix/grabarr/internal/download"
	"github.com/vmunix/grabarr/internal/importer"
	"github.com/vmunix/grabarr/internal/library"
	"github.com/vmunix/grabarr/internal/migrations"
	"github.com/vmunix/grabarr/internal/search"
	"github.com/vmunix/grabarr/internal/server"
	"github.com/vmunix/grabarr/pkg/newznab"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// historyBlocklist records blocklist additions in the history log as
// well as the blocklist itself.
type historyBlocklist struct {
	store   *blocklist.Store
	history *importer.HistoryStore
	log     *slog.Logger
}

func (b *historyBlocklist) Add(mediaTitle string, year int, sourceTitle, reason string) error {
	if err := b.store.Add(mediaTitle, year, sourceTitle, reason); err != nil {
		return err
	}
	entry := &importer.HistoryEntry{
		Event:      importer.EventBlocklisted,
		MediaTitle: mediaTitle,
		Year:       year,
		Detail:     fmt.Sprintf("%s: %s", sourceTitle, reason),
	}
	if err := b.history.Add(entry); err != nil {
		b.log.Warn("record blocklist history", "source_title", sourceTitle, "error", err)
	}
	return nil
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return &config.ConfigError{Path: configPath, Errors: errs}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Stores
	libraryStore := library.NewStore(db)
	blockStore := blocklist.NewStore(db)
	historyStore := importer.NewHistoryStore(db)
	tracker := download.NewTracker(db)

	// Download clients
	var clients []download.Client
	for _, c := range cfg.Downloaders.SABnzbd {
		clients = append(clients, download.NewSABnzbdClient(c.Name, c.URL, c.APIKey, c.Category, logger))
	}
	for _, c := range cfg.Downloaders.NZBGet {
		clients = append(clients, download.NewNZBGetClient(c.Name, c.URL, c.Username, c.Password, c.Category, logger))
	}
	defaultClient := ""
	if len(clients) > 0 {
		defaultClient = clients[0].Name()
	}

	// Indexers
	var newznabClients []*newznab.Client
	for name, indexer := range cfg.Indexers {
		newznabClients = append(newznabClients, newznab.NewClient(name, indexer.URL, indexer.APIKey, logger))
	}
	indexerPool := search.NewIndexerPool(newznabClients, logger)
	selector := search.NewSelector(cfg.CustomFormats(), blockStore, logger)

	// Services
	manager := download.NewManager(clients, tracker, libraryStore, logger)
	var prober importer.Prober
	if cfg.Library.FFProbePath != "" {
		prober = importer.NewFFProbe(cfg.Library.FFProbePath)
	}
	imp := importer.New(libraryStore, historyStore, prober, cfg.ImporterConfig(), logger)
	blocker := &historyBlocklist{store: blockStore, history: historyStore, log: logger}
	reconciler := download.NewReconciler(tracker, imp, blocker, logger)
	poller := server.NewPoller(manager, reconciler, cfg.Poll.Interval(), 15*time.Second, logger)

	// HTTP
	mux := http.NewServeMux()
	api := v1.New(v1.Deps{
		Indexers:  indexerPool,
		Selector:  selector,
		Manager:   manager,
		Blocklist: blockStore,
		Library:   libraryStore,
		History:   historyStore,
		Refresher: poller,
	}, v1.Config{
		Profile:       cfg.DefaultProfile(),
		DefaultClient: defaultClient,
	}, logger)
	api.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: v1.Logging(logger, mux)}

	logger.Info("starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"indexers", len(newznabClients),
		"clients", len(clients),
		"profile", cfg.DefaultProfile().Name,
		"poll_interval", cfg.Poll.Interval().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := server.NewRunner(poller, httpServer, logger)
	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
