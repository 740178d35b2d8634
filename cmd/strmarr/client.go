package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/strmarr/strmarr/internal/generate"
	"github.com/strmarr/strmarr/internal/library"
	"github.com/strmarr/strmarr/internal/search"
)

// Client wraps HTTP calls to the strmarrd server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			// Batches pace themselves server-side; leave headroom.
			Timeout: 10 * time.Minute,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}
	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// SearchResponse is the fan-out result payload.
type SearchResponse struct {
	OK   bool          `json:"ok"`
	List []search.Item `json:"list"`
}

// Search queries every configured source for the keyword.
func (c *Client) Search(keyword string) (*SearchResponse, error) {
	var out SearchResponse
	err := c.get("/api/vod/search?keyword="+url.QueryEscape(keyword), &out)
	return &out, err
}

// Generate runs a single title through the pipeline.
func (c *Client) Generate(req generate.Request) (*generate.Result, error) {
	var out generate.Result
	err := c.post("/api/generate/single", req, &out)
	return &out, err
}

// Switch re-resolves an existing entry in place from a new source.
func (c *Client) Switch(req generate.Request) (*generate.Result, error) {
	var out generate.Result
	err := c.post("/api/strm/switch", req, &out)
	return &out, err
}

// BatchResponse is the batch result payload.
type BatchResponse struct {
	OK      bool                 `json:"ok"`
	Results []generate.BatchItem `json:"results"`
	Logs    []string             `json:"logs"`
}

// Batch generates a list of titles sequentially on the server.
func (c *Client) Batch(items []generate.Request) (*BatchResponse, error) {
	var out BatchResponse
	err := c.post("/api/generate/batch", map[string]any{"items": items}, &out)
	return &out, err
}

// RecordsResponse is the record listing payload.
type RecordsResponse struct {
	OK   bool `json:"ok"`
	List []struct {
		ID        int64  `json:"id"`
		Name      string `json:"vod_name"`
		Type      string `json:"type"`
		Path      string `json:"path"`
		SourceURL string `json:"source_api"`
		LinkKind  string `json:"resolved_link_type"`
		UpdatedAt string `json:"updated_at"`
	} `json:"list"`
}

// Records lists the generated library entries.
func (c *Client) Records() (*RecordsResponse, error) {
	var out RecordsResponse
	err := c.get("/api/records", &out)
	return &out, err
}

// SweepResponse reports how many stale records a sweep removed.
type SweepResponse struct {
	OK      bool `json:"ok"`
	Deleted int  `json:"deleted"`
}

// Sweep drops records whose save directory is gone.
func (c *Client) Sweep() (*SweepResponse, error) {
	var out SweepResponse
	err := c.post("/api/system/sweep", nil, &out)
	return &out, err
}

// Settings fetches the mutable settings snapshot.
func (c *Client) Settings() (*library.Settings, error) {
	var out library.Settings
	err := c.get("/api/config", &out)
	return &out, err
}

// SaveSettings writes the mutable settings.
func (c *Client) SaveSettings(st *library.Settings) error {
	return c.post("/api/config", st, nil)
}
