package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrNotStarted = errors.New("processor not started")
	ErrQueueFull  = errors.New("analytics queue is full")
)

// ClickWriter is the part of the store the processor needs.
type ClickWriter interface {
	InsertClick(ctx context.Context, click *domain.Click) error
}

// ProcessorInterface lets the click recorder hand off failed inserts.
type ProcessorInterface interface {
	Submit(click *domain.Click) error
	GetStats() map[string]interface{}
}

// ProcessorConfig holds configuration for the analytics processor
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of attempts per click
	RetryDelay      time.Duration // Base delay between retries, doubled each attempt
	AttemptTimeout  time.Duration // Timeout for a single insert
	ShutdownTimeout time.Duration // Time to wait for the queue to drain
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     2,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      100 * time.Millisecond,
		AttemptTimeout:  5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Processor retries click inserts out of band so a failing store does not
// fail redirects.
type Processor struct {
	config   ProcessorConfig
	writer   ClickWriter
	log      *zap.Logger
	jobQueue chan *domain.Click
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewProcessor creates a new analytics processor
func NewProcessor(writer ClickWriter, log *zap.Logger, config ProcessorConfig) *Processor {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = 5 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		writer:   writer,
		log:      log,
		jobQueue: make(chan *domain.Click, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("processor already started")
	}

	p.log.Info("starting analytics processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
		zap.Int("retry_attempts", p.config.RetryAttempts),
	)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop closes the queue and waits for workers to drain it. Retries still in
// flight when the shutdown timeout expires are abandoned.
func (p *Processor) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.started = false
	close(p.jobQueue)
	p.mu.Unlock()

	p.log.Info("stopping analytics processor", zap.Int("pending", len(p.jobQueue)))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info("analytics processor stopped gracefully")
		return nil
	case <-time.After(p.config.ShutdownTimeout):
		p.cancel()
		<-done
		p.log.Warn("analytics processor shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}
}

// Submit queues a click for another insert attempt. It never blocks.
func (p *Processor) Submit(click *domain.Click) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrNotStarted
	}

	select {
	case p.jobQueue <- click:
		p.submitted.Add(1)
		p.log.Debug("click queued for retry", zap.Int64("link_id", click.LinkID))
		return nil
	default:
		p.dropped.Add(1)
		p.log.Error("analytics queue is full, dropping click",
			zap.Int64("link_id", click.LinkID),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return ErrQueueFull
	}
}

func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Debug("analytics worker started")

	for click := range p.jobQueue {
		p.insertWithRetry(log, click)
	}

	log.Debug("analytics worker stopped")
}

func (p *Processor) insertWithRetry(log *zap.Logger, click *domain.Click) {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(p.ctx, p.config.AttemptTimeout)
		err := p.writer.InsertClick(ctx, click)
		cancel()

		if err == nil {
			p.succeeded.Add(1)
			if attempt > 1 {
				log.Info("click insert succeeded after retry",
					zap.Int64("link_id", click.LinkID),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		lastErr = err
		// Ссылку успели удалить: повторять бессмысленно
		if errors.Is(err, repository.ErrLinkNotFound) {
			break
		}

		log.Warn("click insert failed",
			zap.Int64("link_id", click.LinkID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == p.config.RetryAttempts {
			break
		}

		// Exponential backoff delay
		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			p.failed.Add(1)
			log.Info("worker shutdown during retry delay", zap.Int64("link_id", click.LinkID))
			return
		}
	}

	p.failed.Add(1)
	log.Error("click insert failed after all retries",
		zap.Int64("link_id", click.LinkID),
		zap.Int("attempts", p.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

// GetStats returns processor statistics
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
		"retry_attempts": p.config.RetryAttempts,
		"submitted":      p.submitted.Load(),
		"succeeded":      p.succeeded.Load(),
		"failed":         p.failed.Load(),
		"dropped":        p.dropped.Load(),
	}
}
