// Package tmdb looks up title metadata, writes NFO sidecars, and
// downloads artwork for generated library entries.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.themoviedb.org"

	// PosterBase and BackdropBase are the image CDN prefixes for the two
	// artwork sizes the writer uses.
	PosterBase   = "https://image.tmdb.org/t/p/w500"
	BackdropBase = "https://image.tmdb.org/t/p/original"
)

// ErrNoMatch is returned when a search yields no usable candidate.
var ErrNoMatch = errors.New("no tmdb match")

// Client is a TMDB search client.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLanguage sets the metadata language (default zh-CN, matching the
// catalogs this system ingests).
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: "zh-CN",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search finds the best-matching title. Candidates are ranked by string
// similarity against the query name rather than trusting TMDB's own
// ordering, which is weak for transliterated titles.
func (c *Client) Search(ctx context.Context, name, year string, series bool) (*SearchResult, error) {
	kind := "movie"
	if series {
		kind = "tv"
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", name)
	params.Set("language", c.language)
	if year != "" && !series {
		params.Set("year", year)
	}

	reqURL := fmt.Sprintf("%s/3/search/%s?%s", c.baseURL, kind, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb api error: %s", resp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, ErrNoMatch
	}

	best := BestMatch(name, out.Results)
	if best == nil {
		return nil, ErrNoMatch
	}
	return best, nil
}
