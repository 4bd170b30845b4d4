package http_test

import (
	"context"

	"linktrack/internal/analytics/usecase"

	"github.com/stretchr/testify/mock"
)

type mockShortURLRepository struct {
	mock.Mock
}

func (m *mockShortURLRepository) FindByShortURI(ctx context.Context, shortURI string) (*usecase.ShortURL, error) {
	args := m.Called(ctx, shortURI)
	s, _ := args.Get(0).(*usecase.ShortURL)
	return s, args.Error(1)
}

func (m *mockShortURLRepository) FindByID(ctx context.Context, id uint64) (*usecase.ShortURL, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*usecase.ShortURL)
	return s, args.Error(1)
}

func (m *mockShortURLRepository) IncrementClickCount(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) TrackClick(ctx context.Context, in usecase.ClickInput) error {
	return m.Called(ctx, in).Error(0)
}

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(in usecase.ClickInput) error {
	return m.Called(in).Error(0)
}

type mockStats struct {
	mock.Mock
}

func (m *mockStats) ComprehensiveStats(ctx context.Context, shortURLID uint64, days int) *usecase.StatsReport {
	return m.Called(ctx, shortURLID, days).Get(0).(*usecase.StatsReport)
}

func (m *mockStats) RecentClicks(ctx context.Context, shortURLID uint64, limit int) []usecase.Row {
	return m.Called(ctx, shortURLID, limit).Get(0).([]usecase.Row)
}
