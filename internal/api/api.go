// Package api implements the HTTP JSON API served by strmarrd.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/strmarr/strmarr/internal/generate"
	"github.com/strmarr/strmarr/internal/library"
	"github.com/strmarr/strmarr/internal/search"
	"github.com/strmarr/strmarr/pkg/maccms"
)

// Config holds API server configuration.
type Config struct {
	// MaxParallel bounds the search fan-out.
	MaxParallel int
}

// Server routes API requests to the store and the generator.
type Server struct {
	store     *library.Store
	generator *generate.Generator
	cfg       Config
	log       *slog.Logger
}

// New creates the API server.
func New(store *library.Store, gen *generate.Generator, cfg Config, log *slog.Logger) *Server {
	return &Server{store: store, generator: gen, cfg: cfg, log: log}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Settings
	mux.HandleFunc("GET /api/config", s.getConfig)
	mux.HandleFunc("POST /api/config", s.setConfig)

	// Catalog passthroughs
	mux.HandleFunc("GET /api/vod/categories", s.categories)
	mux.HandleFunc("GET /api/vod/list", s.list)
	mux.HandleFunc("GET /api/vod/detail", s.detail)
	mux.HandleFunc("GET /api/vod/search", s.search)

	// Generation
	mux.HandleFunc("POST /api/generate/single", s.generateSingle)
	mux.HandleFunc("POST /api/generate/batch", s.generateBatch)
	mux.HandleFunc("POST /api/strm/switch", s.smartSwitch)

	// Library records
	mux.HandleFunc("GET /api/records", s.listRecords)
	mux.HandleFunc("POST /api/system/sweep", s.sweep)

	// Artwork proxy
	mux.HandleFunc("GET /api/proxy/img", s.proxyImage)
}

// okResponse is the uniform failure-tolerant envelope: handlers report
// upstream trouble as ok=false with a message instead of an HTTP error,
// matching the generator's never-raise contract.
type okResponse struct {
	OK   bool   `json:"ok"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeFail(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, okResponse{OK: false, Msg: msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, okResponse{OK: false, Msg: msg})
}

func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// settings reads the per-request snapshot.
func (s *Server) settings(w http.ResponseWriter) (*library.Settings, bool) {
	st, err := s.store.Settings()
	if err != nil {
		s.log.Error("settings read failed", "error", err)
		writeFail(w, "settings unavailable")
		return nil, false
	}
	return st, true
}

// sourceClient builds the gateway for one configured source, honoring the
// snapshot's anti-throttle flag.
func (s *Server) sourceClient(st *library.Settings, index int) (*maccms.Client, bool) {
	if index < 0 || index >= len(st.Sources) {
		return nil, false
	}
	opts := []maccms.Option{maccms.WithLogger(s.log)}
	if st.AntiThrottle {
		opts = append(opts, maccms.WithAntiThrottle(500*time.Millisecond, 1500*time.Millisecond))
	}
	return maccms.NewClient(st.Sources[index], index, opts...), true
}

// sourceClients builds one gateway per configured source for the fan-out.
// The fan-out never applies jitter: its requests hit distinct hosts.
func (s *Server) sourceClients(st *library.Settings) []*maccms.Client {
	clients := make([]*maccms.Client, 0, len(st.Sources))
	for i, src := range st.Sources {
		clients = append(clients, maccms.NewClient(src, i, maccms.WithLogger(s.log)))
	}
	return clients
}

func (s *Server) newPool(st *library.Settings) *search.Pool {
	return search.NewPool(s.sourceClients(st), s.cfg.MaxParallel, s.log.With("component", "search"))
}
