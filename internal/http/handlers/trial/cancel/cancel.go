// Package cancel реализует HTTP-обработчик отмены пробного периода.
// Отменённый пробный период остается в списке пользователя, но
// планировщик напоминаний его больше не обрабатывает.
package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/TechHookDev/trialwatch/internal/http/middlewarectx"
	"github.com/TechHookDev/trialwatch/internal/http/response"
	"github.com/TechHookDev/trialwatch/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики отмены пробного периода.
type Service interface {
	Cancel(ctx context.Context, id, userUID string) (int, error)
}

// Handler управляет HTTP-запросами на отмену пробных периодов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить пробный период
// @Description Переводит пробный период в статус cancelled.
// @Tags Trials
// @Produce  json
// @Param id path string true "ID пробного периода"
// @Success 200 {object} map[string]any "Количество изменённых записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пробный период не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /trials/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	count, err := h.service.Cancel(r.Context(), id, userUID)
	if err != nil {
		log.Error("failed to cancel trial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel trial"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("trial not found"))
		return
	}

	log.Info("trial cancelled", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"cancelled": count,
	}))
}
