package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/oxo/internal/game"
	"github.com/shaharia-lab/oxo/internal/service"
)

// MockGameService is a mock implementation of service.GameService.
type MockGameService struct {
	mock.Mock
}

//nolint:revive
func (m *MockGameService) State(ctx context.Context) game.State {
	args := m.Called(ctx)
	return args.Get(0).(game.State)
}

//nolint:revive
func (m *MockGameService) Move(ctx context.Context, command string) (game.State, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(game.State), args.Error(1)
}

//nolint:revive
func (m *MockGameService) SetPlayers(ctx context.Context, count int) game.State {
	args := m.Called(ctx, count)
	return args.Get(0).(game.State)
}

//nolint:revive
func (m *MockGameService) SetBoardSize(ctx context.Context, rows, cols int) game.State {
	args := m.Called(ctx, rows, cols)
	return args.Get(0).(game.State)
}

//nolint:revive
func (m *MockGameService) Reset(ctx context.Context) game.State {
	args := m.Called(ctx)
	return args.Get(0).(game.State)
}

//nolint:revive
func (m *MockGameService) CacheStats() service.CacheStats {
	args := m.Called()
	return args.Get(0).(service.CacheStats)
}
