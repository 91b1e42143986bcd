package http

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider отдает статистику фоновой обработки кликов
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// HealthHandler обработчик health checks
type HealthHandler struct {
	storage Pinger
	stats   StatsProvider
	log     *zap.Logger
	version string
	started time.Time
}

// NewHealthHandler создает новый health handler. stats может быть nil.
func NewHealthHandler(storage Pinger, stats StatsProvider, log *zap.Logger, version string) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		stats:   stats,
		log:     log,
		version: version,
		started: time.Now(),
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

// Health проверяет доступность базы данных
//
//	@Summary	Liveness and database check
//	@Tags		Operations
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, dbStatus, statusCode := "healthy", "healthy", http.StatusOK
	if err := h.storage.Ping(ctx); err != nil {
		status, dbStatus, statusCode = "unhealthy", "unhealthy", http.StatusServiceUnavailable
		h.log.Error("database health check failed", zap.Error(err))
	}

	writeJSON(w, HealthResponse{
		Status:         status,
		Timestamp:      time.Now().UTC(),
		Version:        h.version,
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(h.started).Round(time.Second).String(),
	}, statusCode)
}

// Ready readiness probe endpoint
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	}, http.StatusOK)
}

// Metrics отдает время работы и статистику очереди повторов кликов
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": time.Since(h.started).Seconds(),
		"timestamp":      time.Now().UTC(),
		"version":        h.version,
		"goroutines":     runtime.NumGoroutine(),
	}
	if h.stats != nil {
		metrics["click_processor"] = h.stats.GetStats()
	}

	writeJSON(w, metrics, http.StatusOK)
}
