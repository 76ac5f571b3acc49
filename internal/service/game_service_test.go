package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/oxo/internal/eventbus"
	"github.com/shaharia-lab/oxo/internal/game"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type publishedEvent struct {
	eventType string
	payload   map[string]string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, payload: payload})
}

func (p *recordingPublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func playAll(t *testing.T, svc GameService, commands ...string) game.State {
	t.Helper()
	var st game.State
	for _, c := range commands {
		var err error
		st, err = svc.Move(context.Background(), c)
		require.NoError(t, err, "move %s", c)
	}
	return st
}

func TestGameService_StateCache(t *testing.T) {
	svc := NewGameService(GameOptions{CacheState: true, Logger: newTestLogger()})
	ctx := context.Background()

	svc.State(ctx)
	svc.State(ctx)

	stats := svc.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, 1, stats.CacheSize)
	assert.True(t, stats.CacheEnabled)
	assert.Equal(t, "valid", stats.CurrentCacheStatus)

	st := playAll(t, svc, "a1")
	assert.Equal(t, "X", st.Board[0][0])

	stats = svc.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses, "a move must invalidate the cached state")
}

func TestGameService_CacheDisabled(t *testing.T) {
	svc := NewGameService(GameOptions{Logger: newTestLogger()})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.State(ctx)
	}

	stats := svc.CacheStats()
	assert.False(t, stats.CacheEnabled)
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Zero(t, stats.HitRate)
	assert.Zero(t, stats.CacheSize, "a disabled cache must not hold a document")
	assert.Equal(t, "invalid", stats.CurrentCacheStatus)
}

func TestGameService_CacheStatsEmpty(t *testing.T) {
	svc := NewGameService(GameOptions{CacheState: true})

	stats := svc.CacheStats()
	assert.Zero(t, stats.HitRate)
	assert.Zero(t, stats.CacheSize)
	assert.Equal(t, "invalid", stats.CurrentCacheStatus)
}

func TestGameService_MoveError(t *testing.T) {
	svc := NewGameService(GameOptions{CacheState: true, Logger: newTestLogger()})
	ctx := context.Background()
	svc.State(ctx)

	_, err := svc.Move(ctx, "z9")
	require.Error(t, err)

	var moveErr *game.MoveError
	require.True(t, errors.As(err, &moveErr))
	assert.Equal(t, game.RowOutOfRange, moveErr.Kind)
	assert.Equal(t, "invalid", svc.CacheStats().CurrentCacheStatus)

	st := svc.State(ctx)
	require.NotNil(t, st.CurrentPlayer)
	assert.Equal(t, "X", *st.CurrentPlayer, "a rejected move must not pass the turn")
}

func TestGameService_WinPublishesMatch(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newGameService(GameOptions{Publisher: pub, Logger: newTestLogger()})
	finished := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return finished }

	st := playAll(t, svc, "a1", "b1", "a2", "b2", "a3")
	require.NotNil(t, st.Winner)
	assert.Equal(t, "X", *st.Winner)

	events := pub.ofType(eventbus.GameFinished)
	require.Len(t, events, 1)
	p := events[0].payload
	assert.NotEmpty(t, p["id"])
	assert.Equal(t, "X", p["winner"])
	assert.Equal(t, "false", p["drawn"])
	assert.Equal(t, "5", p["moves"])
	assert.Equal(t, "3", p["rows"])
	assert.Equal(t, "2", p["playerCount"])
	assert.Equal(t, finished.Format(time.RFC3339Nano), p["finishedAt"])

	// Moves after the win are ignored and publish nothing.
	playAll(t, svc, "c3")
	assert.Len(t, pub.ofType(eventbus.GameFinished), 1)
}

func TestGameService_DrawPublishesMatch(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewGameService(GameOptions{Publisher: pub, Logger: newTestLogger()})

	st := playAll(t, svc, "a1", "a2", "a3", "b2", "b1", "b3", "c2", "c1", "c3")
	assert.True(t, st.Drawn)
	assert.Nil(t, st.Winner)

	events := pub.ofType(eventbus.GameFinished)
	require.Len(t, events, 1)
	assert.Equal(t, "true", events[0].payload["drawn"])
	assert.Equal(t, "", events[0].payload["winner"])
}

func TestGameService_SetPlayersAndSize(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewGameService(GameOptions{Publisher: pub, Logger: newTestLogger()})
	ctx := context.Background()

	st := svc.SetPlayers(ctx, 4)
	assert.Equal(t, 4, st.PlayerCount)
	assert.Equal(t, 4, st.Rows)
	assert.Equal(t, 4, st.Cols)
	require.NotNil(t, st.CurrentPlayer)
	assert.Equal(t, "A", *st.CurrentPlayer)

	st = svc.SetBoardSize(ctx, 5, 7)
	assert.Equal(t, 5, st.Rows)
	assert.Equal(t, 7, st.Cols)
	assert.Len(t, st.Board, 5)
	assert.Len(t, st.Board[0], 7)

	resets := pub.ofType(eventbus.GameReset)
	require.Len(t, resets, 2)
	assert.Equal(t, "players", resets[0].payload["reason"])
	assert.Equal(t, "size", resets[1].payload["reason"])
	assert.Equal(t, "7", resets[1].payload["cols"])
}

func TestGameService_Reset(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewGameService(GameOptions{CacheState: true, Publisher: pub, Logger: newTestLogger()})

	playAll(t, svc, "a1", "b2")
	st := svc.Reset(context.Background())

	for _, row := range st.Board {
		for _, cell := range row {
			assert.Equal(t, " ", cell)
		}
	}
	require.NotNil(t, st.CurrentPlayer)
	assert.Equal(t, "X", *st.CurrentPlayer)
	assert.Len(t, pub.ofType(eventbus.GameReset), 1)
}

func TestGameService_Concurrent(t *testing.T) {
	svc := NewGameService(GameOptions{CacheState: true, Logger: newTestLogger()})
	ctx := context.Background()
	svc.SetBoardSize(ctx, 9, 9)

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(2)
		go func(row int) {
			defer wg.Done()
			for col := 1; col <= 9; col++ {
				_, _ = svc.Move(ctx, string(rune('a'+row))+string(rune('0'+col)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				svc.State(ctx)
			}
		}()
	}
	wg.Wait()

	stats := svc.CacheStats()
	assert.Positive(t, stats.Hits+stats.Misses)
}
