package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"
	"shortener-backend/internal/validator"

	"go.uber.org/zap"
)

type Shortener struct {
	storage   repository.Storage
	log       *zap.Logger
	opTimeout time.Duration
}

func NewShortener(storage repository.Storage, log *zap.Logger, opTimeout time.Duration) *Shortener {
	return &Shortener{
		storage:   storage,
		log:       log,
		opTimeout: opTimeout,
	}
}

// Shorten возвращает ссылку для URL, создавая её при первом обращении.
// created=false означает, что URL уже был сокращен ранее.
func (s *Shortener) Shorten(ctx context.Context, rawURL string) (link *domain.Link, created bool, err error) {
	normalized, err := validator.NormalizeURL(rawURL)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	link, err = s.storage.FindLinkByURL(ctx, normalized)
	if err == nil {
		return link, false, nil
	}
	if !errors.Is(err, repository.ErrLinkNotFound) {
		return nil, false, fmt.Errorf("failed to look up link: %w", err)
	}

	link, err = s.storage.CreateLink(ctx, normalized)
	if err == nil {
		return link, true, nil
	}
	if !errors.Is(err, repository.ErrDuplicateURL) {
		return nil, false, fmt.Errorf("failed to create link: %w", err)
	}

	// Параллельный запрос успел создать ту же ссылку: отдаем победителя
	s.log.Debug("lost create race, re-reading link", zap.String("original_url", normalized))
	link, err = s.storage.FindLinkByURL(ctx, normalized)
	if err != nil {
		return nil, false, fmt.Errorf("failed to re-read link after duplicate: %w", err)
	}
	return link, false, nil
}
