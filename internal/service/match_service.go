package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shaharia-lab/oxo/internal/eventbus"
	"github.com/shaharia-lab/oxo/internal/storage"
)

const (
	defaultMatchLimit = 20
	maxMatchLimit     = 100
)

// MatchService defines the business logic interface for finished match records.
type MatchService interface {
	// List returns the most recent matches first. A zero limit selects the default.
	List(ctx context.Context, limit int) ([]*storage.Match, error)

	// Get returns the match with the given id or a *NotFoundError.
	Get(ctx context.Context, id string) (*storage.Match, error)

	// Record persists a finished match.
	Record(ctx context.Context, m *storage.Match) error

	// Prune keeps the newest keep matches and returns how many were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}

// matchService is the default implementation of MatchService.
type matchService struct {
	repo   storage.MatchStore
	logger *slog.Logger
}

// NewMatchService returns a new MatchService backed by the given MatchStore.
func NewMatchService(repo storage.MatchStore, logger *slog.Logger) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{repo: repo, logger: logger}
}

func (s *matchService) List(ctx context.Context, limit int) ([]*storage.Match, error) {
	if limit < 0 {
		return nil, &ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if limit == 0 {
		limit = defaultMatchLimit
	}
	limit = min(limit, maxMatchLimit)

	matches, err := s.repo.ListMatches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) Get(ctx context.Context, id string) (*storage.Match, error) {
	m, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting match %q: %w", id, err)
	}
	if m == nil {
		return nil, &NotFoundError{Resource: "match", ID: id}
	}
	return m, nil
}

func (s *matchService) Record(ctx context.Context, m *storage.Match) error {
	if m.ID == "" {
		return &ValidationError{Field: "id", Message: "id is required"}
	}
	if err := s.repo.SaveMatch(ctx, m); err != nil {
		return fmt.Errorf("recording match: %w", err)
	}
	s.logger.Info("match recorded", "match_id", m.ID, "winner", m.Winner, "drawn", m.Drawn)
	return nil
}

func (s *matchService) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, &ValidationError{Field: "keep", Message: "must not be negative"}
	}
	n, err := s.repo.PruneMatches(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning matches: %w", err)
	}
	return n, nil
}

// MatchRecorder returns an event bus listener that records every game.finished event.
func MatchRecorder(svc MatchService, logger *slog.Logger) eventbus.Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e eventbus.Event) {
		if e.Type != eventbus.GameFinished {
			return
		}
		m, err := MatchFromPayload(e.Payload)
		if err != nil {
			logger.Warn("discarding malformed game.finished event", "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svc.Record(ctx, m); err != nil {
			logger.Error("failed to record match", "match_id", m.ID, "error", err)
		}
	}
}

// MatchFromPayload decodes the payload of a game.finished event.
func MatchFromPayload(p map[string]string) (*storage.Match, error) {
	m := &storage.Match{ID: p["id"], Winner: p["winner"]}

	ints := []struct {
		key string
		dst *int
	}{
		{"rows", &m.Rows},
		{"cols", &m.Cols},
		{"winThreshold", &m.WinThreshold},
		{"playerCount", &m.PlayerCount},
		{"moves", &m.Moves},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(p[f.key])
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.key, err)
		}
		*f.dst = n
	}

	drawn, err := strconv.ParseBool(p["drawn"])
	if err != nil {
		return nil, fmt.Errorf("parsing drawn: %w", err)
	}
	m.Drawn = drawn

	finishedAt, err := time.Parse(time.RFC3339Nano, p["finishedAt"])
	if err != nil {
		return nil, fmt.Errorf("parsing finishedAt: %w", err)
	}
	m.FinishedAt = finishedAt
	return m, nil
}
