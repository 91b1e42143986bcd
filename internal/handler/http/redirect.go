package http

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"shortener-backend/internal/repository"
	"shortener-backend/internal/service"

	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов
type RedirectHandler struct {
	redirector *service.Redirector
	log        *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(redirector *service.Redirector, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		redirector: redirector,
		log:        log,
	}
}

// HandleRedirect перенаправляет на оригинальный URL и записывает клик
//
//	@Summary		Follow a short link
//	@Tags			Redirect
//	@Param			short_code	path	string	true	"Short code"
//	@Success		302			"Redirect to the original URL"
//	@Failure		404			{object}	ErrorResponse	"Short URL not found"
//	@Failure		500			{object}	ErrorResponse	"Internal error"
//	@Router			/s/{short_code} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")

	target, err := h.redirector.Resolve(r.Context(), code, service.Visitor{
		IP:        extractIPAddress(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			requestLogger(r, h.log).Debug("short code not found", zap.String("short_code", code))
			writeError(w, "Short URL not found", http.StatusNotFound)
			return
		}
		requestLogger(r, h.log).Error("failed to process redirect", zap.String("short_code", code), zap.Error(err))
		writeError(w, "An error occurred", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// extractIPAddress берет первый адрес из X-Forwarded-For, иначе адрес соединения
func extractIPAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
