package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/oxo/internal/benchmark"
	"github.com/shaharia-lab/oxo/internal/metrics"
	"github.com/shaharia-lab/oxo/internal/service"
)

// Demonstrator runs the performance demonstration.
type Demonstrator interface {
	Run(ctx context.Context) (*benchmark.Results, error)
}

// Server holds all dependencies for the REST API handlers.
type Server struct {
	gameSvc  service.GameService
	matchSvc service.MatchService
	stats    *metrics.Registry
	demo     Demonstrator
	logger   *slog.Logger
}

// New creates a new API Server backed by the provided services. matchSvc and demo may be
// nil, in which case their routes are not mounted.
func New(
	gameSvc service.GameService,
	matchSvc service.MatchService,
	stats *metrics.Registry,
	demo Demonstrator,
	logger *slog.Logger,
) *Server {
	if stats == nil {
		stats = metrics.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		gameSvc:  gameSvc,
		matchSvc: matchSvc,
		stats:    stats,
		demo:     demo,
		logger:   logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	// Game
	r.Get("/state", s.handleState)
	r.Post("/move", s.handleMove)
	r.Post("/setPlayers", s.handleSetPlayers)
	r.Post("/setSize", s.handleSetSize)
	r.Post("/reset", s.handleReset)

	// Performance
	r.Get("/performance", s.handlePerformance)
	if s.demo != nil {
		r.Get("/run-demonstration", s.handleRunDemonstration)
	}

	// Match history
	if s.matchSvc != nil {
		r.Get("/matches", s.handleListMatches)
		r.Get("/matches/{id}", s.handleGetMatch)
	}

	r.Get("/version", s.handleVersion)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryInt parses a required integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &service.ValidationError{Field: name, Message: "parameter is required"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}
