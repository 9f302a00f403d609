// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vmunix/grabarr/internal/blocklist"
	"github.com/vmunix/grabarr/internal/download"
	"github.com/vmunix/grabarr/internal/importer"
	"github.com/vmunix/grabarr/internal/library"
	"github.com/vmunix/grabarr/internal/search"
)

// Refresher triggers an immediate reconciliation poll.
type Refresher interface {
	RefreshNow()
}

// Deps are the collaborators the API serves.
type Deps struct {
	Indexers  *search.IndexerPool
	Selector  *search.Selector
	Manager   *download.Manager
	Blocklist *blocklist.Store
	Library   *library.Store
	History   *importer.HistoryStore
	Refresher Refresher
}

// Config holds API behavior configuration.
type Config struct {
	Profile       search.Profile
	DefaultClient string
}

// Server is the v1 API server.
type Server struct {
	deps Deps
	cfg  Config
	log  *slog.Logger
}

// New creates a new v1 API server.
func New(deps Deps, cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, cfg: cfg, log: log.With("component", "api")}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/request", s.requireSearch(s.requestMedia))
	mux.HandleFunc("GET /api/v1/queue", s.requireManager(s.listQueue))
	mux.HandleFunc("DELETE /api/v1/queue/{client}/{id}", s.requireManager(s.removeQueueItem))
	mux.HandleFunc("GET /api/v1/library", s.listLibrary)
	mux.HandleFunc("GET /api/v1/history", s.listHistory)
	mux.HandleFunc("GET /api/v1/blocklist", s.listBlocklist)
	mux.HandleFunc("DELETE /api/v1/blocklist", s.removeBlocklist)
	mux.HandleFunc("POST /api/v1/refresh", s.triggerRefresh)
	mux.HandleFunc("GET /api/v1/health", s.health)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

type requestMediaRequest struct {
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Type    string `json:"type"`
	Client  string `json:"client"`
	Season  *int   `json:"season,omitempty"`
	Episode *int   `json:"episode,omitempty"`
}

type requestMediaResponse struct {
	Release   string `json:"release"`
	Indexer   string `json:"indexer"`
	Client    string `json:"client"`
	QueueID   string `json:"queue_id"`
	Score     int    `json:"score"`
	Breakdown string `json:"breakdown"`
}

// requestMedia searches the indexers, selects the best release for the
// configured profile, and hands it to a download client.
func (s *Server) requestMedia(w http.ResponseWriter, r *http.Request) {
	var req requestMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "title is required")
		return
	}

	clientName := req.Client
	if clientName == "" {
		clientName = s.cfg.DefaultClient
	}

	candidates, errs := s.deps.Indexers.Search(r.Context(), search.Query{
		Text:    req.Title,
		Year:    req.Year,
		Type:    req.Type,
		Season:  req.Season,
		Episode: req.Episode,
	})
	if len(candidates) == 0 && len(errs) > 0 {
		writeError(w, http.StatusBadGateway, "INDEXER_UNAVAILABLE", "all indexers failed")
		return
	}

	selection, err := s.deps.Selector.SelectBest(candidates, s.cfg.Profile)
	switch {
	case errors.Is(err, search.ErrNoResults):
		writeError(w, http.StatusNotFound, "NO_RESULTS", "no releases found")
		return
	case errors.Is(err, search.ErrNoQualifyingRelease):
		writeError(w, http.StatusNotFound, "NO_QUALIFYING_RELEASE", "releases found but none matched the quality profile")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	item, err := s.deps.Manager.Grab(r.Context(), clientName, download.GrabRequest{
		Title:          req.Title,
		Year:           req.Year,
		ReleaseName:    selection.Release.Title,
		DownloadURL:    selection.Release.DownloadURL,
		Score:          selection.Score,
		ScoreBreakdown: selection.Breakdown,
	})
	if err != nil {
		if errors.Is(err, download.ErrNoClient) {
			writeError(w, http.StatusBadRequest, "UNKNOWN_CLIENT", err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "GRAB_FAILED", err.Error())
		return
	}

	if s.deps.History != nil {
		entry := &importer.HistoryEntry{
			Event:      importer.EventGrabbed,
			MediaTitle: req.Title,
			Year:       req.Year,
			Detail:     selection.Release.Title,
		}
		if err := s.deps.History.Add(entry); err != nil {
			// History is advisory; the grab already happened.
			s.log.Warn("record grab history", "title", req.Title, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, requestMediaResponse{
		Release:   selection.Release.Title,
		Indexer:   selection.Release.Indexer,
		Client:    item.ClientName,
		QueueID:   item.QueueID,
		Score:     selection.Score,
		Breakdown: selection.Breakdown,
	})
}

type queueItemResponse struct {
	Client    string  `json:"client"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Size      int64   `json:"size"`
	Remaining int64   `json:"remaining"`
	Progress  float64 `json:"progress"`
}

// listQueue returns the live queues of all clients, filtered to entries
// this system requested.
func (s *Server) listQueue(w http.ResponseWriter, r *http.Request) {
	var items []queueItemResponse
	for _, client := range s.deps.Manager.Clients() {
		queue, err := s.deps.Manager.TrackedQueue(r.Context(), client.Name())
		if err != nil {
			// One unreachable client must not hide the others.
			s.log.Warn("queue fetch failed", "client", client.Name(), "error", err)
			continue
		}
		for _, q := range queue {
			items = append(items, queueItemResponse{
				Client:    client.Name(),
				ID:        q.ID,
				Title:     q.Title,
				Category:  q.Category,
				Size:      q.Size,
				Remaining: q.Remaining,
				Progress:  q.Progress,
			})
		}
	}
	if items == nil {
		items = []queueItemResponse{}
	}
	writeJSON(w, http.StatusOK, items)
}

// removeQueueItem cancels a tracked download on its back-end and drops
// it from the ledger. Untracked queue entries are refused.
func (s *Server) removeQueueItem(w http.ResponseWriter, r *http.Request) {
	clientName := r.PathValue("client")
	queueID := r.PathValue("id")

	err := s.deps.Manager.Remove(r.Context(), clientName, queueID)
	switch {
	case errors.Is(err, download.ErrNoClient):
		writeError(w, http.StatusBadRequest, "UNKNOWN_CLIENT", err.Error())
	case errors.Is(err, download.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "queue entry is not tracked")
	case err != nil:
		writeError(w, http.StatusBadGateway, "REMOVE_FAILED", err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) listLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Library.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if items == nil {
		items = []library.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.History.List(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if entries == nil {
		entries = []importer.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) listBlocklist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Blocklist.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if entries == nil {
		entries = []blocklist.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type removeBlocklistRequest struct {
	SourceTitles []string `json:"source_titles"`
}

func (s *Server) removeBlocklist(w http.ResponseWriter, r *http.Request) {
	var req removeBlocklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	if len(req.SourceTitles) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "source_titles is required")
		return
	}
	if err := s.deps.Blocklist.Remove(req.SourceTitles); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) triggerRefresh(w http.ResponseWriter, r *http.Request) {
	if s.deps.Refresher != nil {
		s.deps.Refresher.RefreshNow()
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
