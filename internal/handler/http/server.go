package http

import (
	"net/http"

	"shortener-backend/internal/auth"
	"shortener-backend/internal/service"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Version отдается в /health и /metrics
const Version = "1.0.0"

// Server HTTP сервер с обработчиками
type Server struct {
	linksHandler    *LinksHandler
	redirectHandler *RedirectHandler
	healthHandler   *HealthHandler
	authMiddleware  *auth.Middleware
	log             *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	shortener *service.Shortener,
	redirector *service.Redirector,
	analyticsService *service.Analytics,
	storage Pinger,
	stats StatsProvider,
	authMiddleware *auth.Middleware,
	log *zap.Logger,
	baseURL string,
) *Server {
	return &Server{
		linksHandler:    NewLinksHandler(shortener, analyticsService, log, baseURL),
		redirectHandler: NewRedirectHandler(redirector, log),
		healthHandler:   NewHealthHandler(storage, stats, log, Version),
		authMiddleware:  authMiddleware,
		log:             log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (без аутентификации)
	mux.HandleFunc("GET /health", s.healthHandler.Health)
	mux.HandleFunc("GET /ready", s.healthHandler.Ready)
	mux.HandleFunc("GET /metrics", s.healthHandler.Metrics)

	// Swagger документация
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Создание ссылки открыто
	s.route(mux, http.MethodPost, "/urls/create", s.linksHandler.CreateLink)

	// Остальные API endpoints требуют токен
	s.route(mux, http.MethodGet, "/urls", s.authMiddleware.RequireAuth(s.linksHandler.ListLinks))
	s.route(mux, http.MethodGet, "/urls/{id}/analytics", s.authMiddleware.RequireAuth(s.linksHandler.GetAnalytics))
	s.route(mux, http.MethodDelete, "/urls/{id}/delete", s.authMiddleware.RequireAuth(s.linksHandler.DeleteLink))

	// Redirect endpoint (без аутентификации)
	mux.HandleFunc("GET /s/{short_code}", s.redirectHandler.HandleRedirect)
	mux.HandleFunc("GET /s/{short_code}/{$}", s.redirectHandler.HandleRedirect)

	var handler http.Handler = mux
	handler = s.authMiddleware.CORS(handler)
	handler = Recover(s.log)(handler)
	handler = Logging(s.log)(handler)
	handler = RequestID(handler)
	return handler
}

// route регистрирует путь с хвостовым слешем и с префиксом /api
func (s *Server) route(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	for _, prefix := range []string{"", "/api"} {
		mux.HandleFunc(method+" "+prefix+path, h)
		mux.HandleFunc(method+" "+prefix+path+"/{$}", h)
	}
}
