// Package server exposes the document-processing pipeline and its history
// store over HTTP.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pagesift/pagesift/document"
	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/history"
	"github.com/pagesift/pagesift/internal/metrics"
)

// Version is reported by the root endpoint and the version command.
const Version = "1.0.0"

// Processor is the slice of the document pipeline the server drives.
type Processor interface {
	ProcessImage(ctx context.Context, path string) (*document.DocumentResult, error)
	ProcessPDF(ctx context.Context, path string) (*document.DocumentResult, error)
	ProcessStructure(ctx context.Context, path string) (*document.StructureResult, error)
}

// Server handles the HTTP API.
type Server struct {
	cfg     config.Config
	proc    Processor
	store   history.Store
	metrics *metrics.Metrics
	log     zerolog.Logger
	limiter *rate.Limiter
}

// New constructs a Server. The processor and store are required; metrics may
// be shared with other components.
func New(cfg config.Config, proc Processor, store history.Store, m *metrics.Metrics, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		proc:    proc,
		store:   store,
		metrics: m,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(cfg.Limits.RatePerSecond), cfg.Limits.RateBurst),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /api/ocr/image", s.limited(s.handleProcessImage))
	mux.HandleFunc("POST /api/ocr/pdf", s.limited(s.handleProcessPDF))
	mux.HandleFunc("POST /api/ocr/structure", s.limited(s.handleProcessStructure))
	mux.HandleFunc("GET /api/ocr/result/{id}", s.handleGetResult)

	mux.HandleFunc("GET /api/history", s.handleListHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleDeleteHistory)
	mux.HandleFunc("DELETE /api/history", s.handleDeleteAllHistory)

	return s.instrument(mux)
}

// ListenAndServe runs the HTTP server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// limited applies the shared process-endpoint rate limiter.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

// instrument wraps the mux with request logging and Prometheus metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.URL.Path
		s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.Info().
			Str("method", r.Method).
			Str("path", route).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "pagesift",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
