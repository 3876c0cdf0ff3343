// Package webhook реализует HTTP-обработчик вебхуков платёжного провайдера.
// Подпись запроса проверяется до разбора события, невалидные запросы
// отклоняются без обработки.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/TechHookDev/trialwatch/internal/lib/sl"
)

// maxBodyBytes ограничивает размер тела вебхука.
const maxBodyBytes = 65536

// EventConstructor проверяет подпись и разбирает событие провайдера.
type EventConstructor interface {
	ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// Service описывает интерфейс бизнес-логики обработки событий оплаты.
type Service interface {
	HandleWebhook(ctx context.Context, event stripe.Event) error
}

// Handler управляет HTTP-запросами вебхуков провайдера.
type Handler struct {
	log         *slog.Logger
	constructor EventConstructor
	service     Service
}

// New создает новый Handler.
func New(log *slog.Logger, constructor EventConstructor, service Service) *Handler {
	return &Handler{
		log:         log,
		constructor: constructor,
		service:     service,
	}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Принимает события Stripe и обновляет статус тарифа пользователя.
// @Tags Payments
// @Accept  json
// @Success 200 "Событие обработано"
// @Failure 400 "Невалидная подпись или тело"
// @Failure 500 "Ошибка обработки"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	event, err := h.constructor.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error("invalid webhook signature", sl.Err(err))
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), event); err != nil {
		log.Error("failed to handle webhook event", sl.Err(err))
		http.Error(w, "failed to handle event", http.StatusInternalServerError)
		return
	}

	log.Info("webhook event handled", slog.String("type", string(event.Type)))
	w.WriteHeader(http.StatusOK)
}
