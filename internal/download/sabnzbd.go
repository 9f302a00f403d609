package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SABnzbdClient talks to a SABnzbd-compatible back-end over its
// API-key-authenticated REST endpoint.
type SABnzbdClient struct {
	name       string
	baseURL    string
	apiKey     string
	category   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewSABnzbdClient creates a SABnzbd client.
func NewSABnzbdClient(name, baseURL, apiKey, category string, log *slog.Logger) *SABnzbdClient {
	if log == nil {
		log = slog.Default()
	}
	return &SABnzbdClient{
		name:     name,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		category: category,
		log:      log.With("component", "sabnzbd", "client", name),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name returns the configured client name.
func (c *SABnzbdClient) Name() string { return c.name }

// AddByURL sends an NZB URL to the back-end.
func (c *SABnzbdClient) AddByURL(ctx context.Context, downloadURL, name, category string) (string, error) {
	if category == "" {
		category = c.category
	}
	c.log.Debug("adding url", "name", name, "category", category)

	params := url.Values{
		"mode":    {"addurl"},
		"name":    {downloadURL},
		"nzbname": {name},
		"cat":     {category},
	}

	var resp sabAddResponse
	if err := c.doRequest(ctx, "addurl", params, &resp); err != nil {
		return "", err
	}

	if !resp.Status {
		if isAPIKeyError(resp.Error) {
			return "", ErrInvalidAPIKey
		}
		return "", fmt.Errorf("sabnzbd add failed: %s", resp.Error)
	}
	if len(resp.NzoIDs) == 0 {
		return "", fmt.Errorf("sabnzbd returned no nzo_id")
	}

	c.log.Debug("url added", "nzo_id", resp.NzoIDs[0])
	return resp.NzoIDs[0], nil
}

// Queue returns the live download queue.
func (c *SABnzbdClient) Queue(ctx context.Context) ([]QueueItem, error) {
	params := url.Values{
		"mode": {"queue"},
	}

	var resp sabQueueResponse
	if err := c.doRequest(ctx, "queue", params, &resp); err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(resp.Queue.Slots))
	for _, slot := range resp.Queue.Slots {
		size := int64(parseFloat(slot.MB) * 1024 * 1024)
		remaining := int64(parseFloat(slot.MBLeft) * 1024 * 1024)
		items = append(items, QueueItem{
			ID:        slot.NzoID,
			Title:     slot.Filename,
			Category:  slot.Category,
			Size:      size,
			Remaining: remaining,
			Progress:  parseFloat(slot.Percentage),
		})
	}
	return items, nil
}

// History returns the terminal record for a queue id.
func (c *SABnzbdClient) History(ctx context.Context, queueID string) (*HistoryItem, error) {
	params := url.Values{
		"mode": {"history"},
	}

	var resp sabHistoryResponse
	if err := c.doRequest(ctx, "history", params, &resp); err != nil {
		return nil, err
	}

	for _, slot := range resp.History.Slots {
		if slot.NzoID != queueID {
			continue
		}
		return &HistoryItem{
			ID:          slot.NzoID,
			Title:       slot.Name,
			Status:      mapSABHistoryStatus(slot.Status),
			StoragePath: slot.Storage,
			FailReason:  slot.FailMessage,
		}, nil
	}
	return nil, ErrHistoryNotFound
}

// Remove deletes entries from the queue.
func (c *SABnzbdClient) Remove(ctx context.Context, queueIDs []string) error {
	if len(queueIDs) == 0 {
		return nil
	}
	c.log.Debug("removing queue entries", "count", len(queueIDs))

	params := url.Values{
		"mode":  {"queue"},
		"name":  {"delete"},
		"value": {strings.Join(queueIDs, ",")},
	}

	var resp sabStatusResponse
	if err := c.doRequest(ctx, "queue/delete", params, &resp); err != nil {
		return err
	}
	if !resp.Status {
		return fmt.Errorf("sabnzbd remove failed")
	}
	return nil
}

// doRequest performs one API call. Every call carries the API key and
// requests JSON output.
func (c *SABnzbdClient) doRequest(ctx context.Context, mode string, params url.Values, result any) error {
	start := time.Now()
	params.Set("apikey", c.apiKey)
	params.Set("output", "json")
	reqURL := c.baseURL + "/api?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "mode", mode, "error", err)
		return ErrClientUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidAPIKey
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Debug("api unexpected status", "mode", mode, "status", resp.StatusCode)
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.log.Debug("api request complete", "mode", mode, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Response types for the SABnzbd API.

type sabAddResponse struct {
	Status bool     `json:"status"`
	NzoIDs []string `json:"nzo_ids"`
	Error  string   `json:"error"`
}

type sabStatusResponse struct {
	Status bool `json:"status"`
}

type sabQueueResponse struct {
	Queue struct {
		Slots []sabQueueSlot `json:"slots"`
	} `json:"queue"`
}

type sabQueueSlot struct {
	NzoID      string `json:"nzo_id"`
	Filename   string `json:"filename"`
	Category   string `json:"cat"`
	Status     string `json:"status"`
	Percentage string `json:"percentage"`
	MB         string `json:"mb"`
	MBLeft     string `json:"mbleft"`
}

type sabHistoryResponse struct {
	History struct {
		Slots []sabHistorySlot `json:"slots"`
	} `json:"history"`
}

type sabHistorySlot struct {
	NzoID       string `json:"nzo_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Bytes       int64  `json:"bytes"`
	Storage     string `json:"storage"`
	FailMessage string `json:"fail_message"`
}

// mapSABHistoryStatus maps a SABnzbd history status to our verdict.
func mapSABHistoryStatus(status string) HistoryStatus {
	switch status {
	case "Completed":
		return HistoryCompleted
	case "Failed":
		return HistoryFailed
	default:
		return HistoryUnknown
	}
}

// isAPIKeyError checks whether an error message indicates a rejected key.
func isAPIKeyError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "api key") || strings.Contains(lower, "apikey")
}

// parseFloat parses a string to float64, returning 0 on error.
func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
