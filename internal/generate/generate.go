// Package generate turns one catalog title into a library entry: it
// re-fetches detail when needed, parses the play manifest, resolves every
// episode link, writes the .strm tree, and upserts the record store.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/strmarr/strmarr/internal/library"
	"github.com/strmarr/strmarr/internal/manifest"
	"github.com/strmarr/strmarr/internal/resolver"
	"github.com/strmarr/strmarr/internal/strm"
	"github.com/strmarr/strmarr/internal/tmdb"
	"github.com/strmarr/strmarr/pkg/maccms"
)

//go:generate mockgen -destination=mocks/mock_generate.go -package=mocks github.com/strmarr/strmarr/internal/generate Gateway,Enricher

// Gateway is the slice of the aggregator client the generator needs.
type Gateway interface {
	Detail(ctx context.Context, id string) (*maccms.Item, error)
}

// Enricher is the metadata lookup collaborator.
type Enricher interface {
	Search(ctx context.Context, name, year string, series bool) (*tmdb.SearchResult, error)
}

// Request identifies one title to generate.
type Request struct {
	ID             string `json:"vod_id"`
	Name           string `json:"vod_name"`
	Poster         string `json:"vod_pic"`
	Year           string `json:"vod_year"`
	TypeName       string `json:"type_name"`
	SourceIndex    int    `json:"source_index"`
	PlayLineIndex  int    `json:"play_line_index"`
	InlineLine     string `json:"line_content,omitempty"` // raw "#"-joined line; re-fetched when empty
	ReplaceInPlace bool   `json:"replace_in_place"`       // smart source switch: reuse the existing directory
}

// Result is the structured outcome of one generation. Failures never
// surface as errors; OK is false and Log explains every decision made.
type Result struct {
	OK           bool              `json:"ok"`
	Msg          string            `json:"msg,omitempty"`
	FilesWritten int               `json:"count"`
	SaveDir      string            `json:"path,omitempty"`
	LinkKind     resolver.LinkKind `json:"link_kind,omitempty"`
	Log          []string          `json:"logs"`
}

// Generator composes the pipeline for single titles and batches.
type Generator struct {
	store    *library.Store
	writer   *strm.Writer
	resolver *resolver.Resolver
	log      *slog.Logger

	newGateway  func(sourceURL string, index int, st *library.Settings) Gateway
	newEnricher func(apiKey string) Enricher
	sleep       func(ctx context.Context, d time.Duration)
}

// Option configures a Generator.
type Option func(*Generator)

// WithGatewayFactory overrides aggregator client construction (for tests).
func WithGatewayFactory(f func(sourceURL string, index int, st *library.Settings) Gateway) Option {
	return func(g *Generator) { g.newGateway = f }
}

// WithEnricherFactory overrides metadata client construction (for tests).
func WithEnricherFactory(f func(apiKey string) Enricher) Option {
	return func(g *Generator) { g.newEnricher = f }
}

// WithSleep overrides the pacing sleep (for tests).
func WithSleep(f func(ctx context.Context, d time.Duration)) Option {
	return func(g *Generator) { g.sleep = f }
}

// New creates a Generator.
func New(store *library.Store, writer *strm.Writer, res *resolver.Resolver, log *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		store:    store,
		writer:   writer,
		resolver: res,
		log:      log,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
	g.newGateway = func(sourceURL string, index int, st *library.Settings) Gateway {
		clientOpts := []maccms.Option{maccms.WithLogger(log)}
		if st.AntiThrottle {
			clientOpts = append(clientOpts, maccms.WithAntiThrottle(500*time.Millisecond, 1500*time.Millisecond))
		}
		return maccms.NewClient(sourceURL, index, clientOpts...)
	}
	g.newEnricher = func(apiKey string) Enricher {
		return tmdb.NewClient(apiKey)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// typeMarkers and seasonPattern classify a title as a series. The type
// label must carry an explicit series marker; a bare "剧情" genre tag
// (drama) on a movie must not trip it.
var typeMarkers = []string{"电视剧", "连续剧", "剧集", "番剧", "Series", "series"}

var seasonPattern = regexp.MustCompile(`第[^第]{1,4}季|Season`)

func isSeries(typeName, name string) bool {
	for _, m := range typeMarkers {
		if strings.Contains(typeName, m) {
			return true
		}
	}
	if strings.Contains(typeName, "集") {
		return true
	}
	return seasonPattern.MatchString(name)
}

// dirDecision is the resolved save-directory choice: an existing record's
// directory (located) or a freshly computed path.
type dirDecision struct {
	dir     string
	located bool
}

// Generate runs the full pipeline for one title. Every step appends a
// human-readable entry to the result log; no failure escapes as an error.
func (g *Generator) Generate(ctx context.Context, st *library.Settings, req Request) *Result {
	res := &Result{}
	trace := func(format string, args ...any) {
		res.Log = append(res.Log, fmt.Sprintf(format, args...))
	}
	fail := func(msg string) *Result {
		res.OK = false
		res.Msg = msg
		return res
	}

	trace("processing %q (id %s) from source index %d", req.Name, req.ID, req.SourceIndex)

	sourceURL := ""
	if req.SourceIndex >= 0 && req.SourceIndex < len(st.Sources) {
		sourceURL = st.Sources[req.SourceIndex]
	}

	// Step 1: re-fetch detail when the caller supplied no inline line.
	// Freshness wins: name, type, and year come from the new response.
	episodes := manifest.ParseLine(req.InlineLine)
	if req.InlineLine == "" {
		if sourceURL == "" {
			trace("source index %d is not configured", req.SourceIndex)
			return fail("invalid source index")
		}
		trace("re-fetching detail for id %s", req.ID)
		item, err := g.newGateway(sourceURL, req.SourceIndex, st).Detail(ctx, req.ID)
		if err != nil {
			trace("detail fetch failed: %v", err)
			return fail("could not fetch title detail")
		}
		req.Name = item.Name
		req.TypeName = item.TypeName
		req.Year = item.Year.String()
		if item.Pic != "" {
			req.Poster = item.Pic
		}
		m := manifest.Parse(item.PlayURL, item.PlayFrom)
		line, ok := m.Line(req.PlayLineIndex)
		if !ok {
			trace("detail carries no play lines")
			return fail("title has no play manifest")
		}
		episodes = line.Episodes
		trace("detail fetched: %q, type %q, line %q (%d episodes)",
			req.Name, req.TypeName, line.Name, len(episodes))
	}

	// Step 2: classify. This gates both layout and emission policy.
	series := isSeries(req.TypeName, req.Name)
	mediaType := library.MediaTypeMovie
	if series {
		mediaType = library.MediaTypeSeries
	}
	trace("classified as %s (type label %q)", mediaType, req.TypeName)

	// Step 3: resolve the save directory once, before any writing.
	decision := g.decideDir(st, req, series, trace)
	if err := os.MkdirAll(decision.dir, 0o755); err != nil {
		trace("cannot create directory: %v", err)
		return fail("could not create save directory")
	}
	res.SaveDir = decision.dir
	trace("save directory: %s", decision.dir)

	// Step 4: enrichment and artwork, skipped on replace-in-place.
	// Nothing here may abort the title.
	if !req.ReplaceInPlace {
		g.enrich(ctx, st, req, decision.dir, series, trace)
	}

	// Step 5: resolve every episode and write the tree.
	written, lastKind := g.writeEpisodes(ctx, decision.dir, req, series, episodes, trace)
	if written == 0 {
		trace("no usable episodes, nothing written")
		return fail("no strm files generated")
	}
	res.FilesWritten = written
	res.LinkKind = lastKind

	// Step 6: upsert, keyed by name per the dedup policy. Replace-in-place
	// with no prior record writes files but fabricates no record.
	rec := &library.Record{
		SourceItemID: req.ID,
		Name:         req.Name,
		Year:         strm.SanitizeName(req.Year),
		PosterURL:    req.Poster,
		Type:         mediaType,
		SaveDir:      decision.dir,
		SourceURL:    sourceURL,
		SourceIndex:  req.SourceIndex,
		LinkKind:     string(lastKind),
	}
	inserted, updated, err := g.store.Upsert(rec, st.DedupKey, !req.ReplaceInPlace)
	switch {
	case err != nil:
		trace("record store upsert failed: %v", err)
		return fail("record store upsert failed")
	case updated:
		trace("record updated (id %d)", rec.ID)
	case inserted:
		trace("record inserted (id %d)", rec.ID)
	default:
		trace("replace-in-place with no prior record: files written, nothing recorded")
	}

	trace("done, %d file(s) generated", written)
	res.OK = true
	return res
}

// decideDir resolves the two-state directory decision. Replace-in-place
// reuses the recorded directory when it still exists, so a source swap
// never fragments a title across two locations.
func (g *Generator) decideDir(st *library.Settings, req Request, series bool, trace func(string, ...any)) dirDecision {
	if req.ReplaceInPlace {
		rec, err := g.store.Find(req.Name, strm.SanitizeName(req.Year), st.DedupKey)
		if err == nil {
			if _, statErr := os.Stat(rec.SaveDir); statErr == nil {
				trace("smart switch: located existing directory %s", rec.SaveDir)
				return dirDecision{dir: rec.SaveDir, located: true}
			}
			trace("recorded directory %s is gone, computing a fresh one", rec.SaveDir)
		} else if !errors.Is(err, library.ErrNotFound) {
			trace("record lookup failed: %v", err)
		} else {
			trace("no prior record found, computing a fresh directory")
		}
	}
	return dirDecision{dir: g.writer.FreshDir(req.Name, req.Year, series)}
}

// enrich attempts TMDB matching, NFO writing, and artwork download, then
// falls back to the aggregator's own poster. Failures are logged only.
func (g *Generator) enrich(ctx context.Context, st *library.Settings, req Request, dir string, series bool, trace func(string, ...any)) {
	posterPath := filepath.Join(dir, "poster.jpg")

	if st.TMDBAPIKey == "" {
		trace("no tmdb api key configured, skipping enrichment")
	} else {
		trace("querying tmdb for %q", req.Name)
		match, err := g.newEnricher(st.TMDBAPIKey).Search(ctx, req.Name, req.Year, series)
		if err != nil {
			trace("tmdb lookup failed: %v", err)
		} else {
			trace("tmdb matched %q (id %d)", match.DisplayTitle(), match.ID)
			if err := tmdb.WriteNFO(dir, match, series); err != nil {
				trace("nfo write failed: %v", err)
			} else {
				trace("nfo sidecar written")
			}
			if match.PosterPath == "" {
				trace("tmdb match has no poster")
			} else {
				if err := tmdb.DownloadImage(ctx, tmdb.PosterBase+match.PosterPath, posterPath); err != nil {
					trace("tmdb poster download failed: %v", err)
				} else {
					trace("tmdb poster downloaded")
				}
				if match.BackdropPath != "" {
					if err := tmdb.DownloadImage(ctx, tmdb.BackdropBase+match.BackdropPath, filepath.Join(dir, "fanart.jpg")); err != nil {
						trace("tmdb backdrop download failed: %v", err)
					} else {
						trace("tmdb backdrop downloaded")
					}
				}
			}
		}
	}

	// Aggregator poster as the fallback when enrichment produced none.
	if _, err := os.Stat(posterPath); err != nil && req.Poster != "" {
		trace("downloading source poster")
		if err := tmdb.DownloadImage(ctx, req.Poster, posterPath); err != nil {
			trace("source poster download failed: %v", err)
		} else {
			trace("source poster downloaded")
		}
	}
}

// writeEpisodes resolves each episode link and writes pointer files.
// Movies take only the first resolvable episode; series take all, under
// the single-season layout. The returned kind is the classification of
// the last processed episode, which is what gets persisted.
func (g *Generator) writeEpisodes(ctx context.Context, dir string, req Request, series bool, episodes []manifest.Episode, trace func(string, ...any)) (int, resolver.LinkKind) {
	written := 0
	lastKind := resolver.KindUnknown

	for idx, ep := range episodes {
		finalURL, kind := g.resolver.Resolve(ctx, ep.RawURL)
		if kind == resolver.KindUnknown {
			trace("[%s] skipped: not an http(s) link", ep.Name)
			continue
		}
		switch {
		case kind == resolver.KindDirect && finalURL == ep.RawURL:
			trace("[%s] already a direct link", ep.Name)
		case kind == resolver.KindDirect:
			trace("[%s] resolved to direct link", ep.Name)
		case finalURL != ep.RawURL:
			trace("[%s] resolved but still a short link", ep.Name)
		default:
			trace("[%s] unresolved, kept as short link (may need webview playback)", ep.Name)
		}
		lastKind = kind

		var path string
		var err error
		if series {
			path, err = g.writer.WriteEpisode(dir, req.Name, ep.Name, idx+1, finalURL)
		} else {
			path, err = g.writer.WriteMovie(dir, req.Name, req.Year, finalURL)
		}
		if err != nil {
			trace("[%s] write failed: %v", ep.Name, err)
			continue
		}
		trace("wrote %s", filepath.Base(path))
		written++

		if !series {
			// Movies emit exactly one file; the rest of the line is noise.
			break
		}
	}
	return written, lastKind
}
