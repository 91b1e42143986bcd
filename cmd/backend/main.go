// Package main provides the entry point for the URL shortener service.
//
//	@title			URL Shortener API
//	@version		1.0.0
//	@description	Shortens URLs, redirects through short codes and reports click analytics.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"context"
	lg "log"
	"os/signal"
	"syscall"

	"shortener-backend/internal/app"
	"shortener-backend/internal/config"
	"shortener-backend/pkg/logger"

	"go.uber.org/zap"

	_ "shortener-backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting url shortener",
		zap.String("env", cfg.Env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("click_failure_policy", cfg.Analytics.ClickFailurePolicy),
	)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Error("service stopped with error", zap.Error(err))
		return
	}
	log.Info("url shortener stopped")
}
