package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"
	"shortener-backend/internal/repository/memory"
	"shortener-backend/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShorten_NewAndExisting(t *testing.T) {
	s := NewShortener(memory.New(), zap.NewNop(), time.Second)
	ctx := context.Background()

	first, created, err := s.Shorten(ctx, "example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "https://example.com", first.OriginalURL)

	second, created, err := s.Shorten(ctx, "  https://example.com ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Code(), second.Code())

	other, created, err := s.Shorten(ctx, "https://example.org")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.Code(), other.Code())
}

func TestShorten_InvalidInput(t *testing.T) {
	storage := new(MockStorage)
	s := NewShortener(storage, zap.NewNop(), time.Second)

	for _, in := range []string{"", "   ", "not a url"} {
		_, _, err := s.Shorten(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, validator.ErrInvalidURL)
	}
	storage.AssertNotCalled(t, "FindLinkByURL", mock.Anything, mock.Anything)
}

func TestShorten_LostRaceReturnsWinner(t *testing.T) {
	storage := new(MockStorage)
	winner := &domain.Link{ID: 7, OriginalURL: "https://example.com", ShortCode: codePtr("7"), State: domain.LinkCoded}

	storage.On("FindLinkByURL", mock.Anything, "https://example.com").Return(nil, repository.ErrLinkNotFound).Once()
	storage.On("CreateLink", mock.Anything, "https://example.com").Return(nil, repository.ErrDuplicateURL).Once()
	storage.On("FindLinkByURL", mock.Anything, "https://example.com").Return(winner, nil).Once()

	s := NewShortener(storage, zap.NewNop(), time.Second)
	link, created, err := s.Shorten(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner, link)
	storage.AssertExpectations(t)
}

func TestShorten_StorageFailure(t *testing.T) {
	storage := new(MockStorage)
	boom := errors.New("connection refused")
	storage.On("FindLinkByURL", mock.Anything, "https://example.com").Return(nil, repository.ErrLinkNotFound)
	storage.On("CreateLink", mock.Anything, "https://example.com").Return(nil, boom)

	s := NewShortener(storage, zap.NewNop(), time.Second)
	_, _, err := s.Shorten(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestShorten_ConcurrentSameURL(t *testing.T) {
	storage := memory.New()
	s := NewShortener(storage, zap.NewNop(), time.Second)

	const n = 32
	var wg sync.WaitGroup
	ids := make([]int64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link, _, err := s.Shorten(context.Background(), "https://example.com/popular")
			errs[i] = err
			if err == nil {
				ids[i] = link.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	links, err := storage.ListLinks(context.Background())
	require.NoError(t, err)
	assert.Len(t, links, 1)
}
