package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/strmarr/strmarr/internal/generate"
	"github.com/strmarr/strmarr/internal/library"
	"github.com/strmarr/strmarr/internal/manifest"
	"github.com/strmarr/strmarr/internal/search"
	"github.com/strmarr/strmarr/pkg/maccms"
)

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) setConfig(w http.ResponseWriter, r *http.Request) {
	var st library.Settings
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeBadRequest(w, "invalid settings payload")
		return
	}
	if err := s.store.SaveSettings(&st); err != nil {
		s.log.Error("settings write failed", "error", err)
		writeFail(w, "could not save settings")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	client, ok := s.sourceClient(st, queryInt(r, "source_index", 0))
	if !ok {
		writeFail(w, "invalid source index")
		return
	}
	cats, err := client.Categories(r.Context())
	if err != nil {
		writeFail(w, "could not fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OK    bool             `json:"ok"`
		Class []maccms.Category `json:"class"`
	}{OK: true, Class: cats})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	client, ok := s.sourceClient(st, queryInt(r, "source_index", 0))
	if !ok {
		writeFail(w, "no sources configured")
		return
	}
	resp, err := client.List(r.Context(), maccms.ListOptions{
		Page:   queryInt(r, "page", 1),
		TypeID: r.URL.Query().Get("type_id"),
	})
	if err != nil {
		writeFail(w, "source request failed")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, Data: resp})
}

// detailResponse pairs the raw item with its parsed play manifest.
type detailResponse struct {
	OK    bool            `json:"ok"`
	Item  *maccms.Item    `json:"data"`
	Lines []manifest.Line `json:"play_sources"`
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	id := r.URL.Query().Get("vod_id")
	if id == "" {
		writeBadRequest(w, "vod_id is required")
		return
	}
	client, ok := s.sourceClient(st, queryInt(r, "source_index", 0))
	if !ok {
		writeFail(w, "invalid source index")
		return
	}
	item, err := client.Detail(r.Context(), id)
	if err != nil {
		writeFail(w, "could not fetch detail")
		return
	}
	m := manifest.Parse(item.PlayURL, item.PlayFrom)
	writeJSON(w, http.StatusOK, detailResponse{OK: true, Item: item, Lines: m.Lines})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeBadRequest(w, "keyword is required")
		return
	}
	items, _ := s.newPool(st).Search(r.Context(), keyword)
	if items == nil {
		items = []search.Item{}
	}
	writeJSON(w, http.StatusOK, struct {
		OK   bool          `json:"ok"`
		List []search.Item `json:"list"`
	}{OK: true, List: items})
}

func (s *Server) generateSingle(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	var req generate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid generate payload")
		return
	}
	writeJSON(w, http.StatusOK, s.generator.Generate(r.Context(), st, req))
}

type batchRequest struct {
	Items []generate.Request `json:"items"`
}

func (s *Server) generateBatch(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid batch payload")
		return
	}
	res := s.generator.Batch(r.Context(), st, req.Items)
	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*generate.BatchResult
	}{OK: true, BatchResult: res})
}

// smartSwitch re-resolves an existing entry from a different source while
// keeping its on-disk location.
func (s *Server) smartSwitch(w http.ResponseWriter, r *http.Request) {
	st, ok := s.settings(w)
	if !ok {
		return
	}
	var req generate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid switch payload")
		return
	}
	req.ReplaceInPlace = true
	writeJSON(w, http.StatusOK, s.generator.Generate(r.Context(), st, req))
}

type recordResponse struct {
	ID          int64  `json:"id"`
	SourceID    string `json:"vod_id"`
	Name        string `json:"vod_name"`
	Year        string `json:"vod_year,omitempty"`
	Poster      string `json:"vod_pic"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	SourceURL   string `json:"source_api"`
	SourceIndex int    `json:"source_idx"`
	LinkKind    string `json:"resolved_link_type"`
	UpdatedAt   string `json:"updated_at"`
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List()
	if err != nil {
		s.log.Error("record list failed", "error", err)
		writeFail(w, "could not list records")
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, recordResponse{
			ID:          rec.ID,
			SourceID:    rec.SourceItemID,
			Name:        rec.Name,
			Year:        rec.Year,
			Poster:      rec.PosterURL,
			Type:        string(rec.Type),
			Path:        rec.SaveDir,
			SourceURL:   rec.SourceURL,
			SourceIndex: rec.SourceIndex,
			LinkKind:    rec.LinkKind,
			UpdatedAt:   rec.UpdatedAt.Format(time.DateTime),
		})
	}
	writeJSON(w, http.StatusOK, struct {
		OK   bool             `json:"ok"`
		List []recordResponse `json:"list"`
	}{OK: true, List: out})
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.Sweep(nil)
	if err != nil {
		s.log.Error("sweep failed", "error", err)
		writeFail(w, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OK      bool `json:"ok"`
		Deleted int  `json:"deleted"`
	}{OK: true, Deleted: deleted})
}

// proxyImage fetches a poster through the server with an empty Referer,
// working around hotlink protection on aggregator image hosts.
func (s *Server) proxyImage(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "url is required", http.StatusNotFound)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		http.Error(w, "bad url", http.StatusNotFound)
		return
	}
	req.Header.Set("User-Agent", maccms.RandomUserAgent())
	req.Header.Set("Referer", "")

	resp, err := imageProxyClient.Do(req)
	if err != nil {
		http.Error(w, "fetch failed", http.StatusNotFound)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		http.Error(w, "fetch failed", http.StatusNotFound)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, resp.Body)
}

var imageProxyClient = &http.Client{Timeout: 10 * time.Second}
