package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"shortener-backend/internal/cache"
	"shortener-backend/internal/repository"
	"shortener-backend/pkg/base62"

	"go.uber.org/zap"
)

// Visitor описывает клиента, перешедшего по короткой ссылке
type Visitor struct {
	IP        string
	UserAgent string
}

type Redirector struct {
	storage   repository.Storage
	cache     cache.LinkCache
	clicks    *ClickRecorder
	log       *zap.Logger
	opTimeout time.Duration
}

func NewRedirector(storage repository.Storage, linkCache cache.LinkCache, clicks *ClickRecorder, log *zap.Logger, opTimeout time.Duration) *Redirector {
	if linkCache == nil {
		linkCache = cache.Noop{}
	}
	return &Redirector{
		storage:   storage,
		cache:     linkCache,
		clicks:    clicks,
		log:       log,
		opTimeout: opTimeout,
	}
}

// Resolve находит оригинальный URL по коду и записывает клик.
// Неизвестный или некорректный код дает repository.ErrLinkNotFound.
func (r *Redirector) Resolve(ctx context.Context, code string, v Visitor) (string, error) {
	if _, err := base62.Decode(code); err != nil {
		return "", repository.ErrLinkNotFound
	}

	entry, err := r.lookup(ctx, code)
	if err != nil {
		return "", err
	}

	_, err = r.clicks.Record(ctx, entry.LinkID, visitorIP(v.IP), optional(v.UserAgent))
	if errors.Is(err, repository.ErrLinkNotFound) {
		// ссылку удалили после чтения из кэша
		r.invalidate(ctx, code)
		return "", err
	}
	if err != nil {
		return "", err
	}

	return entry.OriginalURL, nil
}

func (r *Redirector) lookup(ctx context.Context, code string) (cache.Entry, error) {
	entry, err := r.cache.Get(ctx, code)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		r.log.Warn("link cache read failed", zap.String("short_code", code), zap.Error(err))
	}

	storeCtx, cancel := withTimeout(ctx, r.opTimeout)
	link, err := r.storage.FindLinkByCode(storeCtx, code)
	cancel()
	if errors.Is(err, repository.ErrLinkNotFound) {
		return cache.Entry{}, err
	}
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to look up short code: %w", err)
	}

	entry = cache.Entry{LinkID: link.ID, OriginalURL: link.OriginalURL}
	if err := r.cache.Set(ctx, code, entry); err != nil {
		r.log.Warn("failed to warm up link cache", zap.String("short_code", code), zap.Error(err))
	}
	return entry, nil
}

func (r *Redirector) invalidate(ctx context.Context, code string) {
	if err := r.cache.Delete(ctx, code); err != nil {
		r.log.Warn("failed to invalidate link cache", zap.String("short_code", code), zap.Error(err))
	}
}

// visitorIP сохраняет адрес, только если он разбирается как IP
func visitorIP(ip string) *string {
	if net.ParseIP(ip) == nil {
		return nil
	}
	return &ip
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
