package download

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// NZBGetClient talks to an NZBGet-compatible back-end over its
// basic-auth JSON-RPC endpoint.
type NZBGetClient struct {
	name       string
	baseURL    string
	username   string
	password   string
	category   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewNZBGetClient creates an NZBGet client.
func NewNZBGetClient(name, baseURL, username, password, category string, log *slog.Logger) *NZBGetClient {
	if log == nil {
		log = slog.Default()
	}
	return &NZBGetClient{
		name:     name,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		category: category,
		log:      log.With("component", "nzbget", "client", name),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name returns the configured client name.
func (c *NZBGetClient) Name() string { return c.name }

// AddByURL sends an NZB URL to the back-end. NZBGet assigns integer
// ids; they are rendered as strings to satisfy the queue contract.
func (c *NZBGetClient) AddByURL(ctx context.Context, downloadURL, name, category string) (string, error) {
	if category == "" {
		category = c.category
	}
	c.log.Debug("appending url", "name", name, "category", category)

	// appendurl(NZBFilename, Category, Priority, AddToTop, URL)
	var id int64
	err := c.call(ctx, "appendurl", []any{name, category, 0, false, downloadURL}, &id)
	if err != nil {
		return "", err
	}
	if id <= 0 {
		return "", fmt.Errorf("nzbget rejected url")
	}

	c.log.Debug("url appended", "nzb_id", id)
	return strconv.FormatInt(id, 10), nil
}

// Queue returns the live download queue.
func (c *NZBGetClient) Queue(ctx context.Context) ([]QueueItem, error) {
	var groups []nzbgetGroup
	if err := c.call(ctx, "listgroups", []any{0}, &groups); err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(groups))
	for _, g := range groups {
		size := megabytesToBytes(g.FileSizeMB)
		remaining := megabytesToBytes(g.RemainingSizeMB)
		progress := 0.0
		if size > 0 {
			progress = float64(size-remaining) / float64(size) * 100
		}
		items = append(items, QueueItem{
			ID:        strconv.FormatInt(g.NZBID, 10),
			Title:     g.NZBName,
			Category:  g.Category,
			Size:      size,
			Remaining: remaining,
			Progress:  progress,
		})
	}
	return items, nil
}

// History returns the terminal record for a queue id.
func (c *NZBGetClient) History(ctx context.Context, queueID string) (*HistoryItem, error) {
	id, err := strconv.ParseInt(queueID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse queue id %q: %w", queueID, err)
	}

	var entries []nzbgetHistoryEntry
	if err := c.call(ctx, "history", []any{false}, &entries); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.NZBID != id {
			continue
		}
		item := &HistoryItem{
			ID:          queueID,
			Title:       e.NZBName,
			Status:      mapNZBGetStatus(e.Status),
			StoragePath: e.DestDir,
		}
		if item.Status == HistoryFailed {
			item.FailReason = failReasonFromStatus(e.Status)
		}
		return item, nil
	}
	return nil, ErrHistoryNotFound
}

// Remove deletes entries from the back-end's queue.
func (c *NZBGetClient) Remove(ctx context.Context, queueIDs []string) error {
	if len(queueIDs) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(queueIDs))
	for _, qid := range queueIDs {
		id, err := strconv.ParseInt(qid, 10, 64)
		if err != nil {
			return fmt.Errorf("parse queue id %q: %w", qid, err)
		}
		ids = append(ids, id)
	}

	c.log.Debug("removing queue entries", "count", len(ids))

	var ok bool
	if err := c.call(ctx, "editqueue", []any{"GroupDelete", "", ids}, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("nzbget remove failed")
	}
	return nil
}

// call performs one JSON-RPC request against the back-end.
func (c *NZBGetClient) call(ctx context.Context, method string, params []any, result any) error {
	start := time.Now()

	reqBody, err := json.Marshal(nzbgetRequest{
		Method: method,
		Params: params,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jsonrpc", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("rpc request failed", "method", method, "error", err)
		return ErrClientUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Debug("rpc unexpected status", "method", method, "status", resp.StatusCode)
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var rpcResp nzbgetResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("nzbget rpc error: %s", rpcResp.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	c.log.Debug("rpc request complete", "method", method, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// JSON-RPC envelope and result types for the NZBGet API.

type nzbgetRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type nzbgetResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *nzbgetError    `json:"error"`
}

type nzbgetError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type nzbgetGroup struct {
	NZBID           int64  `json:"NZBID"`
	NZBName         string `json:"NZBName"`
	Category        string `json:"Category"`
	FileSizeMB      int64  `json:"FileSizeMB"`
	RemainingSizeMB int64  `json:"RemainingSizeMB"`
}

type nzbgetHistoryEntry struct {
	NZBID   int64  `json:"NZBID"`
	NZBName string `json:"NZBName"`
	Status  string `json:"Status"`
	DestDir string `json:"DestDir"`
}

func megabytesToBytes(mb int64) int64 {
	return mb * 1024 * 1024
}

// mapNZBGetStatus maps an NZBGet history status like "SUCCESS/ALL" or
// "FAILURE/PAR" to our verdict.
func mapNZBGetStatus(status string) HistoryStatus {
	switch {
	case strings.HasPrefix(status, "SUCCESS"):
		return HistoryCompleted
	case strings.HasPrefix(status, "FAILURE"), strings.HasPrefix(status, "DELETED"):
		return HistoryFailed
	default:
		return HistoryUnknown
	}
}

func failReasonFromStatus(status string) string {
	if _, detail, ok := strings.Cut(status, "/"); ok {
		return "download failed: " + detail
	}
	return "download failed"
}
