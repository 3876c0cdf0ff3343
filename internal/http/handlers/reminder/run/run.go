// Package run реализует HTTP-триггер цикла планировщика напоминаний.
//
// Внешний шедулер (cron) вызывает этот маршрут с фиксированной
// периодичностью. Ответ повторяет форму результата цикла: количество
// отправленных писем и список записей вида "<сервис> - <окно>".
package run

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/TechHookDev/trialwatch/internal/lib/sl"
	"github.com/TechHookDev/trialwatch/internal/services/reminder"
)

// Service описывает интерфейс планировщика напоминаний.
type Service interface {
	RunCycle(ctx context.Context, now time.Time) (*reminder.CycleResult, error)
}

// Handler управляет HTTP-запросами на запуск цикла напоминаний.
type Handler struct {
	log       *slog.Logger
	service   Service
	cronToken string
}

// Result описывает JSON-ответ триггера.
type Result struct {
	Success   bool     `json:"success"`
	Sent      int      `json:"sent"`
	Reminders []string `json:"reminders"`
	Error     string   `json:"error,omitempty"`
}

// New создает новый Handler. Непустой cronToken включает проверку
// заголовка X-Cron-Token.
func New(log *slog.Logger, service Service, cronToken string) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		cronToken: cronToken,
	}
}

// ServeHTTP godoc
// @Summary Запустить цикл напоминаний
// @Description Выполняет один цикл планировщика: находит истекающие пробные периоды и рассылает напоминания.
// @Tags Reminders
// @Produce  json
// @Param X-Cron-Token header string false "Токен внешнего шедулера"
// @Success 200 {object} Result "Итог цикла"
// @Failure 401 {object} Result "Неверный токен"
// @Failure 500 {object} Result "Ошибка конфигурации или хранилища"
// @Router /reminders/run [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.run"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.cronToken != "" && r.Header.Get("X-Cron-Token") != h.cronToken {
		log.Error("invalid cron token")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, Result{Success: false, Reminders: []string{}, Error: "invalid cron token"})
		return
	}

	result, err := h.service.RunCycle(r.Context(), time.Now().UTC())
	if err != nil {
		log.Error("reminder cycle failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Result{Success: false, Reminders: []string{}, Error: err.Error()})
		return
	}

	log.Info("reminder cycle finished", slog.Int("sent", result.Sent))
	render.JSON(w, r, Result{
		Success:   true,
		Sent:      result.Sent,
		Reminders: result.Reminders,
	})
}
