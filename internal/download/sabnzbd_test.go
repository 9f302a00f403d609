package download

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// writeJSON is a helper that writes a JSON response, failing the test on error.
func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON response: %v", err)
	}
}

func TestSABnzbdClient_AddByURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("mode") != "addurl" {
			t.Errorf("expected mode=addurl, got %s", q.Get("mode"))
		}
		if q.Get("apikey") != "test-key" {
			t.Errorf("expected apikey=test-key, got %s", q.Get("apikey"))
		}
		if q.Get("name") != "http://example.com/test.nzb" {
			t.Errorf("expected name=http://example.com/test.nzb, got %s", q.Get("name"))
		}
		if q.Get("cat") != "movies" {
			t.Errorf("expected cat=movies, got %s", q.Get("cat"))
		}

		writeJSON(t, w, map[string]any{
			"status":  true,
			"nzo_ids": []string{"SABnzbd_nzo_abc123"},
		})
	}))
	defer server.Close()

	client := NewSABnzbdClient("sab", server.URL, "test-key", "", nil)
	id, err := client.AddByURL(context.Background(), "http://example.com/test.nzb", "Movie.2024.1080p", "movies")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "SABnzbd_nzo_abc123" {
		t.Errorf("expected id=SABnzbd_nzo_abc123, got %s", id)
	}
}

func TestSABnzbdClient_AddByURL_DefaultCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cat"); got != "grabarr" {
			t.Errorf("expected configured category grabarr, got %s", got)
		}
		writeJSON(t, w, map[string]any{"status": true, "nzo_ids": []string{"nzo_1"}})
	}))
	defer server.Close()

	client := NewSABnzbdClient("sab", server.URL, "test-key", "grabarr", nil)
	if _, err := client.AddByURL(context.Background(), "http://example.com/a.nzb", "a", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestSABnzbdClient_AddByURL_InvalidKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"status": false, "error": "API Key Incorrect"})
	}))
	defer server.Close()

	client := NewSABnzbdClient("sab", server.URL, "bad-key", "", nil)
	_, err := client.AddByURL(context.Background(), "http://example.com/test.nzb", "a", "movies")
	if !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestSABnzbdClient_AddByURL_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewSABnzbdClient("sab", server.URL, "test-key", "", nil)
	_, err := client.AddByURL(context.Background(), "http://example.com/test.nzb", "a", "movies")
	if !errors.Is(err, ErrClientUnavailable) {
		t.Errorf("expected ErrClientUnavailable, got %v", err)
	}
}

func TestSABnzbdClient_Queue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("mode"); got != "queue" {
			t.Errorf("expected mode=queue, got %s", got)
		}
		writeJSON(t, w, map[string]any{
			"queue": map[string]any{
				"slots": []map[string]any{
					{
						"nzo_id":     "nzo_1",
						"filename":   "Movie.2024.1080p.WEB-GRP",
						"cat":        "movies",
						"status":     "Downloading",
						"percentage": "50",
						"mb":         "1024",
						"mbleft":     "512",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewSABnzbdClient("sab", server.URL, "test-key", "", nil)
	items, err := client.Queue(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.ID != "nzo_1" {
		t.Errorf("expected id nzo_1, got %s", item.ID)
	}
	if item.Size != 1024*1024*1024 {
		t.Errorf("expected size 1GiB, got %d", item.Size)
	}
	if item.Remaining != 512*1024*1024 {
		t.Errorf("expected 512MiB remaining, got %d", item.Remaining)
	}
	if item.Progress != 50 {
		t.Errorf("expected progress 50, got %f", item.Progress)
	}
}

func TestSABnzbdClient_History(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"history": map[string]any{
				"slots": []map[string]any{
					{
						"nzo_id":  "nzo_done",
						"name":    "Movie.2024.1080p.WEB-GRP",
						"status":  "Completed",
						"storage": "/downloads/complete/Movie.2024.1080p.WEB-GRP",
					},
					{
						"nzo_id":       "nzo_bad",
						"name":         "Other.2023.720p-BAD",
						"status":       "Failed",
						"fail_message": "Aborted, cannot be completed",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewSABnzbdClient("sab", server.URL, "test-key", "", nil)

	item, err := client.History(context.Background(), "nzo_done")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Status != HistoryCompleted {
		t.Errorf("expected completed, got %s", item.Status)
	}
	if item.StoragePath != "/downloads/complete/Movie.2024.1080p.WEB-GRP" {
		t.Errorf("unexpected storage path %s", item.StoragePath)
	}

	item, err = client.History(context.Background(), "nzo_bad")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.Status != HistoryFailed {
		t.Errorf("expected failed, got %s", item.Status)
	}
	if item.FailReason != "Aborted, cannot be completed" {
		t.Errorf("unexpected fail reason %q", item.FailReason)
	}

	_, err = client.History(context.Background(), "nzo_missing")
	if !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("expected ErrHistoryNotFound, got %v", err)
	}
}

func TestSABnzbdClient_Remove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("mode") != "queue" || q.Get("name") != "delete" {
			t.Errorf("expected queue delete, got mode=%s name=%s", q.Get("mode"), q.Get("name"))
		}
		if q.Get("value") != "nzo_1,nzo_2" {
			t.Errorf("expected value=nzo_1,nzo_2, got %s", q.Get("value"))
		}
		writeJSON(t, w, map[string]any{"status": true})
	}))
	defer server.Close()

	client := NewSABnzbdClient("sab", server.URL, "test-key", "", nil)
	if err := client.Remove(context.Background(), []string{"nzo_1", "nzo_2"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
