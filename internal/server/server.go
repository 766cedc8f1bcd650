// Package server exposes assignment runs over HTTP: starting a run, following
// its decision trail as server-sent events, cancelling it and downloading the
// resulting SAP upload file.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/engine"
	"github.com/Veraticus/sapflow/internal/export"
	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/sapresponse"
	"github.com/Veraticus/sapflow/internal/storage"
)

// Store is everything the HTTP surface reads and writes.
type Store interface {
	engine.Store
	export.Store
	sapresponse.Store
	ListPendingImputations(ctx context.Context) ([]model.PendingImputation, error)
	GetRecentRuns(ctx context.Context, limit int) ([]storage.RunRecord, error)
}

// Config controls the server.
type Config struct {
	Engine engine.Config
	RunTTL time.Duration
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Engine: engine.DefaultConfig(),
		RunTTL: 30 * time.Minute,
	}
}

// Server routes HTTP requests to the orchestrator and its adapters.
type Server struct {
	router   chi.Router
	store    Store
	runs     *Registry
	exporter *export.Exporter
	newID    func() string
	baseCtx  context.Context
	config   Config
}

// New builds a server. Runs execute under baseCtx, so they outlive the
// request that started them and stop when baseCtx is canceled.
func New(baseCtx context.Context, store Store, config Config) *Server {
	if config.RunTTL <= 0 {
		config.RunTTL = DefaultConfig().RunTTL
	}
	s := &Server{
		router:   chi.NewRouter(),
		store:    store,
		runs:     NewRegistry(config.RunTTL),
		exporter: export.New(store, ""),
		newID:    newRunID,
		baseCtx:  baseCtx,
		config:   config,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Runs returns the run registry.
func (s *Server) Runs() *Registry {
	return s.runs
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			slog.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/pending", s.handlePending)
		r.Post("/sap-response", s.handleSapResponse)
		r.Get("/runs", s.handleListRuns)
		r.Post("/runs", s.handleStartRun)
		r.Get("/runs/{id}", s.handleRunStatus)
		r.Get("/runs/{id}/events", s.handleRunEvents)
		r.Post("/runs/{id}/cancel", s.handleCancelRun)
		r.Get("/runs/{id}/export", s.handleRunExport)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	} else {
		slog.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrRunNotFound), errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrRunInProcess):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
