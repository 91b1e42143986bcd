package service

import (
	"context"

	"shortener-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of repository.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateLink(ctx context.Context, originalURL string) (*domain.Link, error) {
	args := m.Called(ctx, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStorage) FindLinkByURL(ctx context.Context, originalURL string) (*domain.Link, error) {
	args := m.Called(ctx, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStorage) FindLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStorage) FindLinkByID(ctx context.Context, id int64) (*domain.Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStorage) ListLinks(ctx context.Context) ([]domain.LinkSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LinkSummary), args.Error(1)
}

func (m *MockStorage) DeleteLink(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) InsertClick(ctx context.Context, click *domain.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockStorage) ListClicks(ctx context.Context, linkID int64) ([]domain.Click, error) {
	args := m.Called(ctx, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Click), args.Error(1)
}

func (m *MockStorage) CountClicks(ctx context.Context, linkID int64) (int64, error) {
	args := m.Called(ctx, linkID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetClicksByDevice(ctx context.Context, linkID int64) (map[string]int64, error) {
	args := m.Called(ctx, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProcessor is a mock implementation of analytics.ProcessorInterface
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Submit(click *domain.Click) error {
	args := m.Called(click)
	return args.Error(0)
}

func (m *MockProcessor) GetStats() map[string]interface{} {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]interface{})
}

func codePtr(s string) *string { return &s }
