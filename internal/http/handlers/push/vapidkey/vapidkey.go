// Package vapidkey реализует HTTP-обработчик выдачи публичного VAPID ключа.
package vapidkey

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/TechHookDev/trialwatch/internal/http/response"
)

// Service отдает публичный VAPID ключ.
type Service interface {
	VAPIDPublicKey() string
}

// Handler управляет HTTP-запросами на получение публичного ключа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Публичный VAPID ключ
// @Description Возвращает ключ для подписки браузера на push-уведомления.
// @Tags Push
// @Produce  json
// @Success 200 {object} map[string]any
// @Router /push/vapid-key [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"public_key": h.service.VAPIDPublicKey(),
	}))
}
