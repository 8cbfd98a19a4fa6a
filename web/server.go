// Package web serves the health/stats sidecar next to the bot.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mraprguild8133/filelinkbot/store"
)

// PublicError carries an HTTP status and a message that is safe to
// show to clients.
type PublicError struct {
	Code    int
	Message string
}

func (pe PublicError) Error() string {
	return fmt.Sprintf("(%d) %s", pe.Code, pe.Message)
}

type jMap map[string]any

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Server exposes the bot's observability surface over HTTP.
type Server struct {
	store   store.Store
	log     *zap.Logger
	mux     *chi.Mux
	started time.Time
}

// New builds the server and its routes.
func New(st store.Store, log *zap.Logger) *Server {
	s := &Server{
		store:   st,
		log:     log,
		started: time.Now().UTC(),
	}

	mux := chi.NewMux()
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.CleanPath)

	mux.Handle("GET /health", s.handlerWithError(s.handleHealth))
	mux.Handle("GET /api/stats", s.handlerWithError(s.handleStats))
	mux.Handle("GET /api/files/{token}", s.handlerWithError(s.handleFileInfo))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.NotFound(s.handlerWithError(s.handleNotFound).ServeHTTP)

	s.mux = mux
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv.ListenAndServe()
}

// handlerFunc is a http handler that may return an error. Public
// errors keep their status and message; everything else becomes a 500
// with the detail kept in the logs.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handlerWithError(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		var perr PublicError
		if errors.As(err, &perr) {
			writeJSON(w, perr.Code, jMap{"error": perr.Message})
			return
		}
		s.log.Error("request failed",
			zap.String("path", r.RequestURI),
			zap.String("remote", r.RemoteAddr),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, jMap{"error": "Internal Server Error"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, jMap{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	writeJSON(w, http.StatusOK, stats)
	return nil
}

// handleFileInfo exposes link metadata. The provider file reference is
// deliberately omitted: it is only meaningful to the bot itself.
func (s *Server) handleFileInfo(w http.ResponseWriter, r *http.Request) error {
	token := chi.URLParam(r, "token")
	rec, err := s.store.Get(r.Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		return PublicError{http.StatusNotFound, "File not found."}
	}
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}
	writeJSON(w, http.StatusOK, jMap{
		"token":        rec.Token,
		"file_name":    rec.Name,
		"file_size":    rec.Size,
		"created_at":   rec.CreatedAt.Format(time.RFC3339),
		"access_count": rec.AccessCount,
	})
	return nil
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) error {
	return PublicError{http.StatusNotFound, "Page not found."}
}
