package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/oxo/internal/storage"
)

// MockMatchStore is a mock implementation of storage.MatchStore.
type MockMatchStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockMatchStore) SaveMatch(ctx context.Context, match *storage.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

//nolint:revive
func (m *MockMatchStore) GetMatch(ctx context.Context, id string) (*storage.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Match), args.Error(1)
}

//nolint:revive
func (m *MockMatchStore) ListMatches(ctx context.Context, limit int) ([]*storage.Match, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Match), args.Error(1)
}

//nolint:revive
func (m *MockMatchStore) PruneMatches(ctx context.Context, keep int) (int64, error) {
	args := m.Called(ctx, keep)
	return args.Get(0).(int64), args.Error(1)
}
