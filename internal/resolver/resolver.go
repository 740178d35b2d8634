// Package resolver classifies episode URLs and follows aggregator-side
// link shorteners to a directly playable address.
package resolver

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/strmarr/strmarr/pkg/maccms"
)

// LinkKind is the playability classification of a resolved URL.
type LinkKind string

const (
	// KindDirect means the URL path ends in a recognized media extension.
	KindDirect LinkKind = "direct"
	// KindShort means the URL needs redirect traversal or an in-app
	// browser to reach playable content.
	KindShort LinkKind = "short_link"
	// KindUnknown means the URL is not fetchable (non-HTTP scheme).
	KindUnknown LinkKind = "unknown"
)

// directExtensions are media container/stream formats that play without
// further resolution. Matched case-insensitively against the URL path.
var directExtensions = map[string]bool{
	".m3u8": true,
	".mp4":  true,
	".avi":  true,
	".flv":  true,
	".mkv":  true,
}

const defaultTimeout = 6 * time.Second

// Resolver resolves indirect links via redirect-following fetches.
type Resolver struct {
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) { r.httpClient = hc }
}

// WithLogger attaches a logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// New creates a Resolver with a short timeout; an unresolvable link must
// degrade quickly instead of stalling a batch.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsDirect reports whether the URL's path (query string ignored) ends in
// a recognized media extension.
func IsDirect(rawURL string) bool {
	trimmed, _, _ := strings.Cut(rawURL, "?")
	ext := strings.ToLower(path.Ext(trimmed))
	return directExtensions[ext]
}

// Resolve classifies rawURL and, for indirect HTTP(S) links, follows
// redirects to the final address. Most aggregator links are already
// direct, so the suffix check runs first and skips the network entirely.
// Transport failures are not fatal: the original URL comes back classified
// as a short link, still usable by a webview-capable player.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, LinkKind) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return rawURL, KindUnknown
	}
	if IsDirect(rawURL) {
		return rawURL, KindDirect
	}

	final, err := r.follow(ctx, rawURL)
	if err != nil {
		if r.log != nil {
			r.log.Warn("short link resolve failed", "url", rawURL, "error", err)
		}
		return rawURL, KindShort
	}

	if IsDirect(final) {
		return final, KindDirect
	}
	// Either the shortener landed on another indirect address, or nothing
	// moved at all; both mean in-app browser playback.
	return final, KindShort
}

// follow issues one redirect-following fetch and reports the final
// address without reading the body.
func (r *Resolver) follow(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", maccms.RandomUserAgent())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	// Only the final URL matters; drop the body unread.
	_ = resp.Body.Close()

	return resp.Request.URL.String(), nil
}
