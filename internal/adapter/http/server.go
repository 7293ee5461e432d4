package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
	"github.com/couchcryptid/lagoon-weather-risk/internal/observability"
	"github.com/couchcryptid/lagoon-weather-risk/internal/pipeline"
)

// maxPayloadBytes bounds the forecast body accepted by POST /v1/assess.
const maxPayloadBytes = 4 << 20

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// LatestStore looks up the most recent archived assessment for a location.
type LatestStore interface {
	Latest(ctx context.Context, location string) (domain.Assessment, error)
}

// API configures the assessment endpoints.
type API struct {
	// Assessor runs the engine on a payload; usually the pipeline's transformer.
	Assessor pipeline.Transformer
	// Archive serves GET /v1/assessments/latest. Nil answers 501.
	Archive LatestStore
	// RateLimit is requests per second for POST /v1/assess, with RateBurst.
	RateLimit float64
	RateBurst int
	Metrics   *observability.Metrics
}

// Server exposes health, readiness, metrics, and assessment HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	api        API
	limiter    *rate.Limiter
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /v1 assessment routes.
func NewServer(addr string, ready ReadinessChecker, api API, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:  logger,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(api.RateLimit), api.RateBurst),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/assess", s.handleAssess)
	mux.HandleFunc("GET /v1/assessments/latest", s.handleLatest)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleAssess runs the engine synchronously on the posted Open-Meteo payload.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	if s.api.Assessor == nil {
		writeError(w, http.StatusNotImplemented, "assessment is not configured")
		return
	}
	if !s.limiter.Allow() {
		s.countRequest("rate_limited")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	headers := make(map[string]string, 2)
	q := r.URL.Query()
	if target := strings.TrimSpace(q.Get("target_date")); target != "" {
		if err := domain.ValidateTargetDate(target); err != nil {
			s.countRequest("bad_request")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		headers[pipeline.TargetDateHeader] = target
	}
	if v := q.Get("exclude_past"); v != "" {
		exclude, err := strconv.ParseBool(v)
		if err != nil {
			s.countRequest("bad_request")
			writeError(w, http.StatusBadRequest, "invalid exclude_past")
			return
		}
		headers[pipeline.ExcludePastHeader] = strconv.FormatBool(exclude)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		s.countRequest("bad_request")
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	a, err := s.api.Assessor.Transform(r.Context(), domain.RawEvent{Value: body, Headers: headers})
	if err != nil {
		s.countRequest("bad_request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.countRequest("ok")
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.api.Archive == nil {
		writeError(w, http.StatusNotImplemented, "assessment archive is not configured")
		return
	}

	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	a, err := s.api.Archive.Latest(r.Context(), location)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.logger.Error("latest assessment lookup failed", "error", err, "location", location)
		writeError(w, http.StatusInternalServerError, "lookup failed")
	default:
		writeJSON(w, http.StatusOK, a)
	}
}

func (s *Server) countRequest(outcome string) {
	if s.api.Metrics != nil {
		s.api.Metrics.AssessRequests.WithLabelValues(outcome).Inc()
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
