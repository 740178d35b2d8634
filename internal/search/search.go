// Package search fans a keyword query out across every configured source
// and merges the results.
package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strmarr/strmarr/pkg/maccms"
)

// ErrNoSources is returned when no sources are configured.
var ErrNoSources = errors.New("no sources configured")

// DefaultMaxParallel bounds the fan-out. The source list is normally
// small, but the bound keeps resource use flat if it grows.
const DefaultMaxParallel = 8

const perSourceTimeout = 8 * time.Second

// Item is a catalog entry tagged with the source it came from, so
// downstream generation can target the right endpoint. Results are not
// de-duplicated across sources: the same title from two aggregators may
// differ in playability.
type Item struct {
	maccms.Item
	SourceIndex int    `json:"_source_index"`
	SourceURL   string `json:"_source_url"`
}

// Pool queries multiple aggregator clients concurrently.
type Pool struct {
	clients     []*maccms.Client
	maxParallel int
	log         *slog.Logger
}

// NewPool creates a pool over the given clients. maxParallel <= 0 uses
// DefaultMaxParallel.
func NewPool(clients []*maccms.Client, maxParallel int, log *slog.Logger) *Pool {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	return &Pool{clients: clients, maxParallel: maxParallel, log: log}
}

// Search queries every source for the keyword and merges all results in
// no particular order. A failing source contributes nothing and never
// fails the call; its error is logged and returned for visibility.
func (p *Pool) Search(ctx context.Context, keyword string) ([]Item, []error) {
	if len(p.clients) == 0 {
		return nil, []error{ErrNoSources}
	}

	start := time.Now()
	p.log.Debug("search started", "keyword", keyword, "sources", len(p.clients))

	var (
		mu    sync.Mutex
		items []Item
		errs  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)

	for _, client := range p.clients {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, perSourceTimeout)
			defer cancel()

			resp, err := client.List(qctx, maccms.ListOptions{Keyword: keyword})
			if err != nil {
				p.log.Warn("source failed", "endpoint", client.URL(), "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil // one source's failure never fails the fan-out
			}

			tagged := make([]Item, 0, len(resp.List))
			for _, it := range resp.List {
				tagged = append(tagged, Item{
					Item:        it,
					SourceIndex: client.Index(),
					SourceURL:   client.URL(),
				})
			}
			mu.Lock()
			items = append(items, tagged...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	p.log.Info("search complete",
		"keyword", keyword,
		"results", len(items),
		"errors", len(errs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, errs
}
