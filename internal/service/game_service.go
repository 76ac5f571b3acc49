// Package service implements the business logic layer between HTTP handlers
// and the game engine and storage packages. All interfaces are designed for easy
// mocking in tests.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/oxo/internal/eventbus"
	"github.com/shaharia-lab/oxo/internal/game"
	"github.com/shaharia-lab/oxo/internal/metrics"
)

// GameService defines the operations the API performs on the single shared game.
type GameService interface {
	// State returns the current state document.
	State(ctx context.Context) game.State

	// Move applies a move command such as "a1" and returns the resulting state.
	// Invalid moves return a *game.MoveError.
	Move(ctx context.Context, command string) (game.State, error)

	// SetPlayers replaces the players and resets the game.
	SetPlayers(ctx context.Context, count int) game.State

	// SetBoardSize rebuilds the board and resets the game.
	SetBoardSize(ctx context.Context, rows, cols int) game.State

	// Reset clears the board and gives the turn to the first player.
	Reset(ctx context.Context) game.State

	// CacheStats reports state cache usage.
	CacheStats() CacheStats
}

// CacheStats describes the state document cache.
type CacheStats struct {
	Hits               int64   `json:"hits"`
	Misses             int64   `json:"misses"`
	HitRate            float64 `json:"hitRate"`
	CacheSize          int     `json:"cacheSize"`
	CacheEnabled       bool    `json:"cacheEnabled"`
	CurrentCacheStatus string  `json:"currentCacheStatus"`
}

// GameOptions configures a GameService.
type GameOptions struct {
	// Checker decides wins. Nil selects game.DirectionalChecker.
	Checker game.WinChecker
	// CacheState keeps the last state document until the next mutation.
	CacheState bool
	// RecordMetrics mirrors cache lookups and finished games to Prometheus.
	RecordMetrics bool
	// Publisher receives game.finished and game.reset events. Optional.
	Publisher EventPublisher
	Logger    *slog.Logger
}

// gameService is the default implementation of GameService.
type gameService struct {
	mu   sync.Mutex
	game *game.Game

	cacheEnabled bool
	cached       *game.State
	dirty        bool
	hits         int64
	misses       int64

	recordMetrics bool
	publisher     EventPublisher
	logger        *slog.Logger
	now           func() time.Time
}

// NewGameService returns a GameService over a fresh default game.
func NewGameService(opts GameOptions) GameService {
	return newGameService(opts)
}

func newGameService(opts GameOptions) *gameService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{
		game:          game.NewDefault(opts.Checker),
		cacheEnabled:  opts.CacheState,
		dirty:         true,
		recordMetrics: opts.RecordMetrics,
		publisher:     opts.Publisher,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *gameService) State(_ context.Context) game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *gameService) Move(_ context.Context, command string) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	finished, err := s.game.Play(command)
	if err != nil {
		return game.State{}, err
	}
	if finished {
		s.finishedLocked()
	}
	return s.stateLocked(), nil
}

func (s *gameService) SetPlayers(_ context.Context, count int) game.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	s.game.SetPlayers(count)
	s.publish(eventbus.GameReset, map[string]string{
		"reason":      "players",
		"playerCount": strconv.Itoa(len(s.game.Players())),
	})
	return s.stateLocked()
}

func (s *gameService) SetBoardSize(_ context.Context, rows, cols int) game.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	s.game.SetBoardSize(rows, cols)
	s.publish(eventbus.GameReset, map[string]string{
		"reason": "size",
		"rows":   strconv.Itoa(s.game.Rows()),
		"cols":   strconv.Itoa(s.game.Cols()),
	})
	return s.stateLocked()
}

func (s *gameService) Reset(_ context.Context) game.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	s.cached = nil
	s.game.Reset()
	s.publish(eventbus.GameReset, map[string]string{"reason": "reset"})
	return s.stateLocked()
}

func (s *gameService) CacheStats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := CacheStats{
		Hits:               s.hits,
		Misses:             s.misses,
		CacheEnabled:       s.cacheEnabled,
		CurrentCacheStatus: "valid",
	}
	if total := s.hits + s.misses; total > 0 {
		stats.HitRate = float64(s.hits) / float64(total)
	}
	if s.cached != nil {
		stats.CacheSize = 1
	}
	if s.dirty {
		stats.CurrentCacheStatus = "invalid"
	}
	return stats
}

// stateLocked serves the cached document when it is still valid. Callers hold s.mu.
func (s *gameService) stateLocked() game.State {
	if s.cacheEnabled && !s.dirty && s.cached != nil {
		s.hits++
		s.observeLookup(true)
		return *s.cached
	}

	s.misses++
	s.observeLookup(false)
	st := s.game.State()
	if s.cacheEnabled {
		s.cached = &st
		s.dirty = false
	}
	return st
}

func (s *gameService) observeLookup(hit bool) {
	if s.recordMetrics && s.cacheEnabled {
		metrics.RecordCacheLookup(hit)
	}
}

func (s *gameService) finishedLocked() {
	if s.recordMetrics {
		metrics.RecordGameFinished(s.game.Drawn())
	}
	winner := ""
	if w, ok := s.game.Winner(); ok {
		winner = string(w)
	}
	id := uuid.NewString()
	s.logger.Info("game finished", "match_id", id, "winner", winner, "drawn", s.game.Drawn(), "moves", s.game.Moves())

	s.publish(eventbus.GameFinished, map[string]string{
		"id":           id,
		"rows":         strconv.Itoa(s.game.Rows()),
		"cols":         strconv.Itoa(s.game.Cols()),
		"winThreshold": strconv.Itoa(s.game.WinThreshold()),
		"playerCount":  strconv.Itoa(len(s.game.Players())),
		"winner":       winner,
		"drawn":        strconv.FormatBool(s.game.Drawn()),
		"moves":        strconv.Itoa(s.game.Moves()),
		"finishedAt":   s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *gameService) publish(eventType string, payload map[string]string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(eventType, payload)
}
