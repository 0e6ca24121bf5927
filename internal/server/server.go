// Package server exposes the tracker's HTTP surface: single and bulk
// summary generation, run history, and the development-only diagnostic
// endpoints.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"samtrack/internal/bulk"
	"samtrack/internal/config"
	"samtrack/internal/store"
)

// Summarizer is the single-call summary client the handlers drive.
type Summarizer = bulk.Summarizer

// Server holds the HTTP handler dependencies.
type Server struct {
	cfg        *config.Config
	store      *store.Store
	summarizer Summarizer
	logger     *zap.Logger
}

// New returns a Server. A nil logger is replaced with a no-op logger.
func New(cfg *config.Config, st *store.Store, sum Summarizer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, store: st, summarizer: sum, logger: logger}
}

// Handler builds the route table. Diagnostic routes return 404 in
// production mode; everything else is unaffected by the flag.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-ai-summary", s.handleGenerateSummary)
	mux.HandleFunc("POST /bulk-summary", s.handleBulkSummary)
	mux.HandleFunc("GET /runs", s.handleListRuns)

	if s.cfg.Production {
		mux.HandleFunc("/diag/", s.handleNotFound)
		mux.HandleFunc("GET /reload-info", s.handleNotFound)
	} else {
		mux.HandleFunc("GET /diag/routes", s.handleDiagRoutes)
		mux.HandleFunc("GET /reload-info", s.handleReloadInfo)
	}

	return s.withLogging(withSecurityHeaders(mux))
}

// withSecurityHeaders applies the response headers the tracker has always
// sent.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}
