package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/grabarr/pkg/newznab"
	"github.com/vmunix/grabarr/pkg/release"
)

// IndexerPool fans a search out to every configured indexer in parallel
// and merges the results.
type IndexerPool struct {
	clients []*newznab.Client
	log     *slog.Logger
}

// NewIndexerPool creates a pool from the given clients.
func NewIndexerPool(clients []*newznab.Client, log *slog.Logger) *IndexerPool {
	if log == nil {
		log = slog.Default()
	}
	return &IndexerPool{clients: clients, log: log.With("component", "indexerpool")}
}

// Search queries all indexers and merges results. Individual indexer
// failures are collected but never abort the whole search.
func (p *IndexerPool) Search(ctx context.Context, q Query) ([]Release, []error) {
	if len(p.clients) == 0 {
		return nil, []error{ErrNoIndexers}
	}

	searchText := release.NormalizeSearchQuery(q.Text)
	start := time.Now()
	p.log.Debug("search started", "query", searchText, "type", q.Type, "indexers", len(p.clients))

	var categories []int
	switch q.Type {
	case "series":
		categories = []int{5000, 5010, 5020, 5030, 5040, 5045}
	default:
		categories = []int{2000, 2010, 2020, 2030, 2040, 2045}
	}

	sr := newznab.SearchRequest{
		Query:      searchText,
		Categories: categories,
		Season:     q.Season,
		Episode:    q.Episode,
	}
	// Year narrows movie searches; series queries carry season/episode
	// instead.
	if q.Type != "series" {
		sr.Year = q.Year
	}

	type result struct {
		releases []newznab.Release
		err      error
	}

	results := make(chan result, len(p.clients))
	var wg sync.WaitGroup

	for _, client := range p.clients {
		wg.Add(1)
		go func(c *newznab.Client) {
			defer wg.Done()
			indexerStart := time.Now()
			releases, err := c.Search(ctx, sr)
			if err != nil {
				p.log.Warn("indexer failed", "indexer", c.Name(), "error", err,
					"duration_ms", time.Since(indexerStart).Milliseconds())
			}
			results <- result{releases: releases, err: err}
		}(client)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []Release
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		for _, nr := range r.releases {
			all = append(all, Release{
				Title:       nr.Title,
				Indexer:     nr.Indexer,
				GUID:        nr.GUID,
				DownloadURL: nr.DownloadURL,
				Size:        nr.Size,
				PublishDate: nr.PublishDate,
			})
		}
	}

	p.log.Info("search complete", "query", searchText, "results", len(all),
		"errors", len(errs), "duration_ms", time.Since(start).Milliseconds())
	return all, errs
}
