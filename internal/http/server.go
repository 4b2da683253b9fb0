// Package http serves the JSON query API over the shared application state.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"reikningar/internal/assistant"
	"reikningar/internal/cache"
	"reikningar/internal/log"
	"reikningar/internal/report"
	"reikningar/internal/services"
)

// Defaults for Options.
const (
	DefaultMaxUploadBytes    = 32 << 20
	DefaultRequestsPerMinute = 30

	viewCacheSize = 64
	viewCacheTTL  = 10 * time.Minute
)

// Options configures a Server. Assistant may be nil, in which case the ask
// endpoint reports the service as unavailable.
type Options struct {
	Ingest            *services.IngestService
	Assistant         *assistant.Assistant
	Logger            *log.Logger
	MaxUploadBytes    int64
	RequestsPerMinute int
	Now               func() time.Time
}

type Server struct {
	http.Server
	state     *services.State
	ingest    *services.IngestService
	assistant *assistant.Assistant
	logger    *log.Logger
	limiter   *rateLimiter
	maxUpload int64
	now       func() time.Time
	views     *cache.LRU[report.Frame]

	done         chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		state:     opts.Ingest.State(),
		ingest:    opts.Ingest,
		assistant: opts.Assistant,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:   newRateLimiter(opts.RequestsPerMinute),
		maxUpload: opts.MaxUploadBytes,
		now:       opts.Now,
		views:     cache.NewLRU[report.Frame](viewCacheSize, viewCacheTTL).WithClock(opts.Now),
		done:      make(chan struct{}),
	}
	go s.sweepViews(viewCacheTTL)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("POST /api/bills", s.handleCreateBill)
	mux.HandleFunc("PATCH /api/bills/{id}/recurring", s.handleSetRecurring)
	mux.HandleFunc("DELETE /api/bills/{id}", s.handleDeleteBill)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/documents", s.limit(s.handleUpload))
	mux.HandleFunc("GET /api/analytics", s.handleListViews)
	mux.HandleFunc("GET /api/analytics/{view}", s.handleView)
	mux.HandleFunc("POST /api/assistant/ask", s.limit(s.handleAsk))
	mux.HandleFunc("GET /api/assistant/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/assistant/history", s.handleResetHistory)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           withSecurityHeaders(traced(s.logger, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the background sweepers and gracefully shuts down the
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopBackground()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) stopBackground() {
	s.stopOnce.Do(func() {
		s.limiter.stop()
		close(s.done)
	})
}

// sweepViews drops expired analytics frames every interval until the
// server shuts down.
func (s *Server) sweepViews(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.expireViews()
		case <-s.done:
			return
		}
	}
}

func (s *Server) expireViews() int {
	n := s.views.CleanExpired()
	if n > 0 {
		s.logger.Debug("Expired cached analytics views", "removed", n)
	}
	return n
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady succeeds once the state holds a loaded snapshot.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.state.Snapshot().Version == 0 {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
