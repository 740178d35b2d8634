// Package maccms implements a client for the MacCMS "provide/vod" API
// dialect spoken by VOD aggregators.
package maccms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// ErrNoData is returned for every failure mode of a query: transport
// errors, non-2xx statuses, and bodies that cannot be decoded even after
// charset sniffing. Callers treat all of these the same way.
var ErrNoData = errors.New("no data from source")

const maxBodySize = 16 << 20

// Client queries a single aggregator endpoint.
type Client struct {
	baseURL    string
	index      int
	httpClient *http.Client
	limiter    *rate.Limiter
	jitter     func(ctx context.Context)
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithAntiThrottle enables a randomized pre-request delay sampled from
// [min, max). Pacing only makes sense for serialized callers.
func WithAntiThrottle(min, max time.Duration) Option {
	return func(c *Client) {
		c.jitter = func(ctx context.Context) {
			d := min + time.Duration(rand.Int64N(int64(max-min)))
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		}
	}
}

// WithRateLimit caps the sustained request rate against the endpoint.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger attaches a logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for one aggregator endpoint. index is the
// position of the endpoint in the configured source list; it travels with
// results so downstream generation can target the right source.
func NewClient(baseURL string, index int, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		index:   index,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint address.
func (c *Client) URL() string { return c.baseURL }

// Index returns the endpoint's position in the source list.
func (c *Client) Index() int { return c.index }

// ListOptions narrows a list query.
type ListOptions struct {
	Page    int
	TypeID  string
	Keyword string
}

// List performs an ac=list query.
func (c *Client) List(ctx context.Context, opts ListOptions) (*Response, error) {
	params := url.Values{}
	params.Set("ac", "list")
	if opts.Page > 0 {
		params.Set("pg", strconv.Itoa(opts.Page))
	}
	if opts.TypeID != "" && opts.TypeID != "all" {
		params.Set("t", opts.TypeID)
	}
	if opts.Keyword != "" {
		params.Set("wd", opts.Keyword)
	}
	return c.query(ctx, params)
}

// Categories fetches the aggregator's category list.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	resp, err := c.query(ctx, url.Values{})
	if err != nil {
		return nil, err
	}
	if len(resp.Class) == 0 {
		return nil, fmt.Errorf("%w: empty class list", ErrNoData)
	}
	return resp.Class, nil
}

// Detail performs an ac=detail query and returns the first matching item,
// which carries the play manifest fields.
func (c *Client) Detail(ctx context.Context, id string) (*Item, error) {
	params := url.Values{}
	params.Set("ac", "detail")
	params.Set("ids", id)
	resp, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.List) == 0 {
		return nil, fmt.Errorf("%w: detail %s returned no items", ErrNoData, id)
	}
	return &resp.List[0], nil
}

// query issues one GET and decodes the envelope. A single attempt, no
// retries; pacing happens before the request when configured.
func (c *Client) query(ctx context.Context, params url.Values) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
	}
	if c.jitter != nil {
		c.jitter(ctx)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %q", ErrNoData, c.baseURL)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	req.Header.Set("User-Agent", RandomUserAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logWarn("query failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logWarn("query failed", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrNoData, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	out, err := decodeEnvelope(body, resp.Header.Get("Content-Type"))
	if err != nil {
		c.logWarn("undecodable body", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	if c.log != nil {
		c.log.Debug("query complete",
			"endpoint", c.baseURL,
			"items", len(out.List),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return out, nil
}

// decodeEnvelope tries a straight JSON decode first. Some aggregators label
// JSON as text/html or ship it in a legacy encoding, so a failed decode is
// retried through a charset-sniffing reader before giving up.
func decodeEnvelope(body []byte, contentType string) (*Response, error) {
	var out Response
	if err := json.Unmarshal(body, &out); err == nil {
		return &out, nil
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("sniff encoding: %w", err)
	}
	recoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("recode body: %w", err)
	}
	if err := json.Unmarshal(recoded, &out); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return &out, nil
}

func (c *Client) logWarn(msg string, args ...any) {
	if c.log != nil {
		c.log.Warn(msg, append([]any{"endpoint", c.baseURL}, args...)...)
	}
}
