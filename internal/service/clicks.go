package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortener-backend/internal/analytics"
	"shortener-backend/internal/config"
	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"

	"go.uber.org/zap"
)

// ClickRecorder ведет журнал кликов только на добавление.
type ClickRecorder struct {
	storage   repository.Storage
	enricher  *analytics.Enricher
	processor analytics.ProcessorInterface
	policy    string
	log       *zap.Logger
	opTimeout time.Duration
	now       func() time.Time
}

// NewClickRecorder создает рекордер. processor может быть nil, тогда
// политика defer вырождается в fail.
func NewClickRecorder(
	storage repository.Storage,
	enricher *analytics.Enricher,
	processor analytics.ProcessorInterface,
	policy string,
	log *zap.Logger,
	opTimeout time.Duration,
) *ClickRecorder {
	return &ClickRecorder{
		storage:   storage,
		enricher:  enricher,
		processor: processor,
		policy:    policy,
		log:       log,
		opTimeout: opTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record добавляет клик по ссылке. Ошибка вставки при политике defer
// передается в очередь повторов и наружу не возвращается.
func (r *ClickRecorder) Record(ctx context.Context, linkID int64, ip, userAgent *string) (*domain.Click, error) {
	click := &domain.Click{
		LinkID:    linkID,
		ClickedAt: r.now(),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	r.enricher.Enrich(click)

	insertCtx, cancel := withTimeout(ctx, r.opTimeout)
	err := r.storage.InsertClick(insertCtx, click)
	cancel()
	if err == nil {
		return click, nil
	}
	if errors.Is(err, repository.ErrLinkNotFound) {
		return nil, err
	}

	if r.policy == config.ClickPolicyFail || r.processor == nil {
		return nil, fmt.Errorf("failed to record click: %w", err)
	}

	deferred := *click
	if subErr := r.processor.Submit(&deferred); subErr != nil {
		r.log.Error("click lost: insert failed and retry queue rejected it",
			zap.Int64("link_id", linkID),
			zap.NamedError("insert_error", err),
			zap.NamedError("queue_error", subErr),
		)
		return click, nil
	}

	r.log.Warn("click insert failed, deferred to retry queue",
		zap.Int64("link_id", linkID),
		zap.Error(err),
	)
	return click, nil
}

// History возвращает клики ссылки, новые первыми
func (r *ClickRecorder) History(ctx context.Context, linkID int64) ([]domain.Click, error) {
	ctx, cancel := withTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.storage.ListClicks(ctx, linkID)
}

func (r *ClickRecorder) Count(ctx context.Context, linkID int64) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.storage.CountClicks(ctx, linkID)
}
