// Package newznab implements the Newznab usenet indexer API protocol.
package newznab

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable is returned when the indexer cannot be reached at all.
// Everything the indexer answers, including errors, classifies as
// "no usable results" instead.
var ErrUnavailable = errors.New("indexer unavailable")

// Client is a Newznab API client for a single indexer.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// SearchRequest carries the parameters for one indexer query. Season
// and Episode are pointers so a season-pack search (season set, episode
// nil) is distinguishable from an episode search.
type SearchRequest struct {
	Query      string
	Categories []int
	Year       int // release year hint; 0 means unspecified
	Season     *int
	Episode    *int
}

// Release is a search result from an indexer.
type Release struct {
	Title       string
	GUID        string
	DownloadURL string
	Size        int64
	PublishDate time.Time
	Indexer     string
}

// NewClient creates a client for one indexer.
func NewClient(name, baseURL, apiKey string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With("component", "newznab", "indexer", name),
	}
}

// Name returns the indexer name.
func (c *Client) Name() string {
	return c.name
}

// Newznab XML response structures

type rssResponse struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title     string       `xml:"title"`
	GUID      string       `xml:"guid"`
	Link      string       `xml:"link"`
	Size      int64        `xml:"size"`
	PubDate   string       `xml:"pubDate"`
	Enclosure rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
}

// apiError is the provider error element (<error code="100" .../>).
type apiError struct {
	XMLName     xml.Name `xml:"error"`
	Code        string   `xml:"code,attr"`
	Description string   `xml:"description,attr"`
}

// JSON variant some indexers serve with o=json.

type jsonResponse struct {
	Channel struct {
		Items []jsonItem `json:"item"`
	} `json:"channel"`
}

type jsonItem struct {
	Title     string `json:"title"`
	GUID      string `json:"guid"`
	Link      string `json:"link"`
	PubDate   string `json:"pubDate"`
	Enclosure struct {
		URL    string `json:"url"`
		Length string `json:"length"`
	} `json:"enclosure"`
}

// Search queries the indexer for releases matching the request. A
// request with a season becomes a tvsearch with season/ep parameters;
// everything else is a plain search, with the year passed along when
// known. An indexer that answers with a non-200 status, an empty body,
// or its own error element yields an empty result set, not an error;
// only a transport failure returns ErrUnavailable.
func (c *Client) Search(ctx context.Context, sr SearchRequest) ([]Release, error) {
	start := time.Now()

	reqURL, err := url.Parse(c.baseURL + "/api")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	if sr.Season != nil {
		params.Set("t", "tvsearch")
		params.Set("season", strconv.Itoa(*sr.Season))
		if sr.Episode != nil {
			params.Set("ep", strconv.Itoa(*sr.Episode))
		}
	} else {
		params.Set("t", "search")
		if sr.Year > 0 {
			params.Set("year", strconv.Itoa(sr.Year))
		}
	}
	if sr.Query != "" {
		params.Set("q", sr.Query)
	}
	if len(sr.Categories) > 0 {
		cats := make([]string, len(sr.Categories))
		for i, cat := range sr.Categories {
			cats[i] = strconv.Itoa(cat)
		}
		params.Set("cat", strings.Join(cats, ","))
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("search request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("search returned non-200, treating as no results", "status", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	releases := c.parseBody(body)
	c.log.Debug("search complete", "query", sr.Query, "results", len(releases),
		"duration_ms", time.Since(start).Milliseconds())
	return releases, nil
}

// parseBody decodes an XML or JSON search response. Any unparseable or
// error-bearing body counts as no results.
func (c *Client) parseBody(body []byte) []Release {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		c.log.Warn("search returned empty body, treating as no results")
		return nil
	}

	if trimmed[0] == '{' {
		return c.parseJSON(trimmed)
	}

	var apiErr apiError
	if err := xml.Unmarshal(trimmed, &apiErr); err == nil && apiErr.Code != "" {
		c.log.Warn("indexer reported error, treating as no results",
			"code", apiErr.Code, "description", apiErr.Description)
		return nil
	}

	var rss rssResponse
	if err := xml.Unmarshal(trimmed, &rss); err != nil {
		c.log.Warn("unparseable search response, treating as no results", "error", err)
		return nil
	}

	releases := make([]Release, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		rel := Release{
			Title:       item.Title,
			GUID:        item.GUID,
			DownloadURL: item.Link,
			Indexer:     c.name,
		}
		if item.Enclosure.Length > 0 {
			rel.Size = item.Enclosure.Length
		} else if item.Size > 0 {
			rel.Size = item.Size
		}
		if rel.DownloadURL == "" {
			rel.DownloadURL = item.Enclosure.URL
		}
		rel.PublishDate = parsePubDate(item.PubDate)
		if rel.Title != "" && rel.DownloadURL != "" {
			releases = append(releases, rel)
		}
	}
	return releases
}

func (c *Client) parseJSON(body []byte) []Release {
	var jr jsonResponse
	if err := json.Unmarshal(body, &jr); err != nil {
		c.log.Warn("unparseable JSON search response, treating as no results", "error", err)
		return nil
	}

	releases := make([]Release, 0, len(jr.Channel.Items))
	for _, item := range jr.Channel.Items {
		rel := Release{
			Title:       item.Title,
			GUID:        item.GUID,
			DownloadURL: item.Link,
			Indexer:     c.name,
		}
		if rel.DownloadURL == "" {
			rel.DownloadURL = item.Enclosure.URL
		}
		if n, err := strconv.ParseInt(item.Enclosure.Length, 10, 64); err == nil {
			rel.Size = n
		}
		rel.PublishDate = parsePubDate(item.PubDate)
		if rel.Title != "" && rel.DownloadURL != "" {
			releases = append(releases, rel)
		}
	}
	return releases
}

func parsePubDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range []string{
		time.RFC1123Z,
		"Mon, 02 Jan 2006 15:04:05 -0700",
		time.RFC1123,
	} {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
