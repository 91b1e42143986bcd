package service

import (
	"context"
	"fmt"
	"time"

	"shortener-backend/internal/cache"
	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"

	"go.uber.org/zap"
)

// Report агрегирует статистику одной ссылки
type Report struct {
	Link        domain.Link
	TotalClicks int64
	Clicks      []domain.Click
	ByDevice    map[string]int64
}

type Analytics struct {
	storage   repository.Storage
	clicks    *ClickRecorder
	cache     cache.LinkCache
	log       *zap.Logger
	opTimeout time.Duration
}

func NewAnalytics(storage repository.Storage, clicks *ClickRecorder, linkCache cache.LinkCache, log *zap.Logger, opTimeout time.Duration) *Analytics {
	if linkCache == nil {
		linkCache = cache.Noop{}
	}
	return &Analytics{
		storage:   storage,
		clicks:    clicks,
		cache:     linkCache,
		log:       log,
		opTimeout: opTimeout,
	}
}

// For строит отчет по ссылке. Неизвестный id дает repository.ErrLinkNotFound.
func (a *Analytics) For(ctx context.Context, id int64) (*Report, error) {
	ctx, cancel := withTimeout(ctx, a.opTimeout)
	defer cancel()

	link, err := a.storage.FindLinkByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := a.clicks.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load click history: %w", err)
	}

	byDevice, err := a.storage.GetClicksByDevice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load device breakdown: %w", err)
	}

	return &Report{
		Link:        *link,
		TotalClicks: int64(len(history)),
		Clicks:      history,
		ByDevice:    byDevice,
	}, nil
}

// List возвращает все ссылки с числом кликов, новые первыми
func (a *Analytics) List(ctx context.Context) ([]domain.LinkSummary, error) {
	ctx, cancel := withTimeout(ctx, a.opTimeout)
	defer cancel()
	return a.storage.ListLinks(ctx)
}

// Delete удаляет ссылку с кликами и сбрасывает её из кэша
func (a *Analytics) Delete(ctx context.Context, id int64) (string, error) {
	storeCtx, cancel := withTimeout(ctx, a.opTimeout)
	code, err := a.storage.DeleteLink(storeCtx, id)
	cancel()
	if err != nil {
		return "", err
	}

	if err := a.cache.Delete(ctx, code); err != nil {
		a.log.Warn("failed to invalidate link cache", zap.String("short_code", code), zap.Error(err))
	}
	return code, nil
}
