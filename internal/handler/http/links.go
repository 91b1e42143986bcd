package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"
	"shortener-backend/internal/service"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	shortener *service.Shortener
	analytics *service.Analytics
	log       *zap.Logger
	baseURL   string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(shortener *service.Shortener, analytics *service.Analytics, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		shortener: shortener,
		analytics: analytics,
		log:       log,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url" example:"https://example.com/some/long/path"`
}

// LinkResponse описание короткой ссылки
type LinkResponse struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	Message     string    `json:"message,omitempty"`
}

// LinkListItem ссылка в списке вместе с числом кликов
type LinkListItem struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	Clicks      int64     `json:"clicks"`
}

// ListLinksResponse структура ответа списка ссылок
type ListLinksResponse struct {
	Count int            `json:"count"`
	URLs  []LinkListItem `json:"urls"`
}

// ClickResponse один клик в истории
type ClickResponse struct {
	ClickedAt  time.Time `json:"clicked_at"`
	IPAddress  *string   `json:"ip_address"`
	UserAgent  *string   `json:"user_agent"`
	DeviceType *string   `json:"device_type,omitempty"`
	Browser    *string   `json:"browser,omitempty"`
	OS         *string   `json:"os,omitempty"`
	Country    *string   `json:"country,omitempty"`
	City       *string   `json:"city,omitempty"`
}

// AnalyticsResponse структура ответа статистики
type AnalyticsResponse struct {
	ID             int64            `json:"id"`
	ShortCode      string           `json:"short_code"`
	ShortURL       string           `json:"short_url"`
	OriginalURL    string           `json:"original_url"`
	TotalClicks    int64            `json:"total_clicks"`
	CreatedAt      time.Time        `json:"created_at"`
	Clicks         []ClickResponse  `json:"clicks"`
	ClicksByDevice map[string]int64 `json:"clicks_by_device"`
}

// CreateLink создает короткую ссылку или возвращает существующую
//
//	@Summary		Shorten a URL
//	@Description	Returns the existing link (200) when the URL was shortened before, otherwise creates one (201)
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateLinkRequest	true	"URL to shorten"
//	@Success		200		{object}	LinkResponse		"URL already shortened"
//	@Success		201		{object}	LinkResponse		"Link created"
//	@Failure		400		{object}	ErrorResponse		"Invalid request"
//	@Failure		500		{object}	ErrorResponse		"Internal error"
//	@Router			/urls/create [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.OriginalURL) == "" {
		writeError(w, "original_url is required", http.StatusBadRequest)
		return
	}

	link, created, err := h.shortener.Shorten(r.Context(), req.OriginalURL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeError(w, "Invalid URL format", http.StatusBadRequest)
			return
		}
		requestLogger(r, h.log).Error("failed to shorten url", zap.Error(err))
		writeError(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	resp := h.linkResponse(link)
	if !created {
		resp.Message = "URL already shortened"
		writeJSON(w, resp, http.StatusOK)
		return
	}

	requestLogger(r, h.log).Info("created link",
		zap.Int64("link_id", link.ID),
		zap.String("short_code", link.Code()))
	writeJSON(w, resp, http.StatusCreated)
}

// ListLinks возвращает все ссылки, новые первыми
//
//	@Summary		List links
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ListLinksResponse
//	@Failure		401	{object}	ErrorResponse	"Authentication required"
//	@Failure		500	{object}	ErrorResponse	"Internal error"
//	@Router			/urls [get]
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.analytics.List(r.Context())
	if err != nil {
		requestLogger(r, h.log).Error("failed to list links", zap.Error(err))
		writeError(w, "An error occurred", http.StatusInternalServerError)
		return
	}

	items := make([]LinkListItem, len(links))
	for i, l := range links {
		items[i] = LinkListItem{
			ID:          l.ID,
			ShortCode:   l.Code(),
			ShortURL:    h.shortURL(l.Code()),
			OriginalURL: l.OriginalURL,
			CreatedAt:   l.CreatedAt,
			Clicks:      l.ClickCount,
		}
	}

	writeJSON(w, ListLinksResponse{Count: len(items), URLs: items}, http.StatusOK)
}

// GetAnalytics возвращает статистику по ссылке
//
//	@Summary		Link analytics
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Link ID"
//	@Success		200	{object}	AnalyticsResponse
//	@Failure		400	{object}	ErrorResponse	"Invalid id"
//	@Failure		401	{object}	ErrorResponse	"Authentication required"
//	@Failure		404	{object}	ErrorResponse	"URL not found"
//	@Failure		500	{object}	ErrorResponse	"Internal error"
//	@Router			/urls/{id}/analytics [get]
func (h *LinksHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	report, err := h.analytics.For(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			writeError(w, "URL not found", http.StatusNotFound)
			return
		}
		requestLogger(r, h.log).Error("failed to build analytics", zap.Int64("link_id", id), zap.Error(err))
		writeError(w, "An error occurred", http.StatusInternalServerError)
		return
	}

	clicks := make([]ClickResponse, len(report.Clicks))
	for i, c := range report.Clicks {
		clicks[i] = ClickResponse{
			ClickedAt:  c.ClickedAt,
			IPAddress:  c.IPAddress,
			UserAgent:  c.UserAgent,
			DeviceType: c.DeviceType,
			Browser:    c.Browser,
			OS:         c.OS,
			Country:    c.Country,
			City:       c.City,
		}
	}

	writeJSON(w, AnalyticsResponse{
		ID:             report.Link.ID,
		ShortCode:      report.Link.Code(),
		ShortURL:       h.shortURL(report.Link.Code()),
		OriginalURL:    report.Link.OriginalURL,
		TotalClicks:    report.TotalClicks,
		CreatedAt:      report.Link.CreatedAt,
		Clicks:         clicks,
		ClicksByDevice: report.ByDevice,
	}, http.StatusOK)
}

// DeleteLink удаляет ссылку вместе с кликами
//
//	@Summary		Delete a link
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Link ID"
//	@Success		200	{object}	MessageResponse
//	@Failure		400	{object}	ErrorResponse	"Invalid id"
//	@Failure		401	{object}	ErrorResponse	"Authentication required"
//	@Failure		404	{object}	ErrorResponse	"URL not found"
//	@Failure		500	{object}	ErrorResponse	"Internal error"
//	@Router			/urls/{id}/delete [delete]
func (h *LinksHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	code, err := h.analytics.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			writeError(w, "URL not found", http.StatusNotFound)
			return
		}
		requestLogger(r, h.log).Error("failed to delete link", zap.Int64("link_id", id), zap.Error(err))
		writeError(w, "An error occurred", http.StatusInternalServerError)
		return
	}

	requestLogger(r, h.log).Info("deleted link", zap.Int64("link_id", id), zap.String("short_code", code))
	writeJSON(w, MessageResponse{Message: "URL " + code + " deleted successfully"}, http.StatusOK)
}

func (h *LinksHandler) linkResponse(link *domain.Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		ShortCode:   link.Code(),
		ShortURL:    h.shortURL(link.Code()),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}
}

func (h *LinksHandler) shortURL(code string) string {
	return h.baseURL + "/s/" + code
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
