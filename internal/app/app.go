package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shortener-backend/internal/analytics"
	"shortener-backend/internal/auth"
	"shortener-backend/internal/cache"
	"shortener-backend/internal/config"
	"shortener-backend/internal/database"
	httpHandler "shortener-backend/internal/handler/http"
	"shortener-backend/internal/repository"
	"shortener-backend/internal/repository/gormstore"
	"shortener-backend/internal/repository/memory"
	"shortener-backend/internal/service"
	"shortener-backend/pkg/geo"
	"shortener-backend/pkg/useragent"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App собирает все зависимости сервиса из конфигурации
type App struct {
	cfg *config.Config
	log *zap.Logger

	db        *gorm.DB
	Storage   repository.Storage
	Cache     cache.LinkCache
	Processor *analytics.Processor

	Shortener  *service.Shortener
	Redirector *service.Redirector
	Analytics  *service.Analytics
	JWT        *auth.JWTService

	closers []func() error
}

// New инициализирует хранилище, кэш, аналитику и сервисы. Процессор
// повторов создается, но запускается только в Run.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	if err := a.initStorage(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initCache(); err != nil {
		a.Close()
		return nil, err
	}
	enricher, err := a.initEnricher()
	if err != nil {
		a.Close()
		return nil, err
	}

	var processor analytics.ProcessorInterface
	if cfg.Analytics.ClickFailurePolicy == config.ClickPolicyDefer {
		a.Processor = analytics.NewProcessor(a.Storage, log, analytics.ProcessorConfig{
			WorkerCount:     cfg.Analytics.Workers,
			BufferSize:      cfg.Analytics.BufferSize,
			RetryAttempts:   cfg.Analytics.RetryAttempts,
			RetryDelay:      cfg.Analytics.RetryDelay,
			AttemptTimeout:  cfg.Database.OpTimeout,
			ShutdownTimeout: cfg.HTTPServer.ShutdownTimeout,
		})
		processor = a.Processor
	}

	opTimeout := cfg.Database.OpTimeout
	clicks := service.NewClickRecorder(a.Storage, enricher, processor, cfg.Analytics.ClickFailurePolicy, log, opTimeout)
	a.Shortener = service.NewShortener(a.Storage, log, opTimeout)
	a.Redirector = service.NewRedirector(a.Storage, a.Cache, clicks, log, opTimeout)
	a.Analytics = service.NewAnalytics(a.Storage, clicks, a.Cache, log, opTimeout)

	a.JWT = auth.NewJWTService(&auth.JWTConfig{
		SecretKey: []byte(cfg.Auth.JWTSecret),
		TokenTTL:  cfg.Auth.TokenTTL,
		Issuer:    cfg.Auth.Issuer,
	})

	return a, nil
}

func (a *App) initStorage() error {
	if a.cfg.Database.Driver == "memory" {
		a.log.Warn("using in-memory storage, data will not survive a restart")
		a.Storage = memory.New()
		return nil
	}

	db, err := database.NewConnection(&a.cfg.Database, a.cfg.Env, a.log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() error { return database.Close(db, a.log) })

	if a.cfg.Database.AutoMigrate {
		a.log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, a.log); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	} else {
		a.log.Info("skipping database migrations (auto_migrate: false)")
	}

	a.Storage = gormstore.New(db, a.log)
	return nil
}

func (a *App) initCache() error {
	switch a.cfg.Cache.Driver {
	case "redis":
		c, err := cache.ConnectRedis(a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPassword, a.cfg.Cache.RedisDB, a.cfg.Cache.TTL)
		if err != nil {
			return err
		}
		a.log.Info("link cache connected to redis", zap.String("addr", a.cfg.Cache.RedisAddr))
		a.Cache = c
	case "memory":
		a.Cache = cache.NewLocal(a.cfg.Cache.TTL)
	default:
		a.Cache = cache.Noop{}
	}
	a.closers = append(a.closers, a.Cache.Close)
	return nil
}

func (a *App) initEnricher() (*analytics.Enricher, error) {
	parser, err := useragent.NewParser(a.cfg.Analytics.UserAgentRegexes, a.log)
	if err != nil {
		return nil, err
	}

	var resolver *geo.Resolver
	if path := a.cfg.Analytics.GeoIPDB; path != "" {
		resolver, err = geo.Open(path)
		if err != nil {
			// без базы GeoIP клики пишутся без страны и города
			a.log.Warn("geoip lookups disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, resolver.Close)
		}
	}

	return analytics.NewEnricher(parser, resolver), nil
}

// Config возвращает конфигурацию, из которой собрано приложение
func (a *App) Config() *config.Config {
	return a.cfg
}

// Migrate применяет схему; для in-memory хранилища ничего не делает
func (a *App) Migrate() error {
	if a.db == nil {
		return nil
	}
	return database.AutoMigrate(a.db, a.log)
}

// HTTPServer строит http.Server с маршрутами и middleware
func (a *App) HTTPServer() *http.Server {
	var stats httpHandler.StatsProvider
	if a.Processor != nil {
		stats = a.Processor
	}

	srv := httpHandler.NewServer(
		a.Shortener,
		a.Redirector,
		a.Analytics,
		a.Storage,
		stats,
		auth.NewMiddleware(a.JWT, a.cfg.HTTPServer.AllowedOrigins, a.log),
		a.log,
		a.cfg.URLShortener.BaseURL,
	)

	return &http.Server{
		Addr:         a.cfg.HTTPServer.Address,
		Handler:      srv.SetupRoutes(),
		ReadTimeout:  a.cfg.HTTPServer.ReadTimeout,
		WriteTimeout: a.cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  a.cfg.HTTPServer.IdleTimeout,
	}
}

// Run запускает процессор и HTTP сервер и блокируется до отмены ctx,
// после чего корректно останавливает оба.
func (a *App) Run(ctx context.Context) error {
	if a.Processor != nil {
		if err := a.Processor.Start(); err != nil {
			return err
		}
	}

	server := a.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down HTTP server")
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		a.log.Info("HTTP server stopped")
	}

	// Клики из очереди повторов дописываются после остановки приема запросов
	if a.Processor != nil {
		if err := a.Processor.Stop(); err != nil {
			a.log.Warn("analytics processor stop", zap.Error(err))
		}
	}

	return runErr
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.HTTPServer.ShutdownTimeout > 0 {
		return a.cfg.HTTPServer.ShutdownTimeout
	}
	return 15 * time.Second
}

// Close освобождает ресурсы в обратном порядке
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
}
