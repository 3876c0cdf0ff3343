// Package trialwatch предоставляет маршруты для основного приложения.
package trialwatch

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/TechHookDev/trialwatch/internal/http/handlers/auth/login"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/auth/register"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/health"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/payment/checkout"
	paymentwebhook "github.com/TechHookDev/trialwatch/internal/http/handlers/payment/webhook"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/push/subscribe"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/push/unsubscribe"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/push/vapidkey"
	reminderrun "github.com/TechHookDev/trialwatch/internal/http/handlers/reminder/run"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/trial/cancel"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/trial/create"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/trial/list"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/trial/read"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/trial/remove"
	"github.com/TechHookDev/trialwatch/internal/http/handlers/trial/update"
	"github.com/TechHookDev/trialwatch/internal/http/middlewarectx"
	"github.com/TechHookDev/trialwatch/internal/paymentprovider"
	authservice "github.com/TechHookDev/trialwatch/internal/services/auth"
	paymentservice "github.com/TechHookDev/trialwatch/internal/services/payment"
	pushservice "github.com/TechHookDev/trialwatch/internal/services/push"
	reminderservice "github.com/TechHookDev/trialwatch/internal/services/reminder"
	trialservice "github.com/TechHookDev/trialwatch/internal/services/trial"
	"github.com/TechHookDev/trialwatch/internal/storage/repository"
)

// Services объединяет зависимости маршрутов приложения.
type Services struct {
	Auth              *authservice.AuthService
	Trial             *trialservice.TrialService
	Reminder          *reminderservice.ReminderService
	Push              *pushservice.PushService
	Payment           *paymentservice.PaymentService
	PaymentProvider   *paymentprovider.Client
	Storage           *repository.Storage
	ReminderCronToken string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/push/vapid-key", vapidkey.New(logger, s.Push).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/trials", create.New(logger, s.Trial).ServeHTTP)
			r.Get("/trials", list.New(logger, s.Trial).ServeHTTP)
			r.Get("/trials/{id}", read.New(logger, s.Trial).ServeHTTP)
			r.Put("/trials/{id}", update.New(logger, s.Trial).ServeHTTP)
			r.Delete("/trials/{id}", remove.New(logger, s.Trial).ServeHTTP)
			r.Post("/trials/{id}/cancel", cancel.New(logger, s.Trial).ServeHTTP)
			r.Post("/push/subscriptions", subscribe.New(logger, s.Push).ServeHTTP)
			r.Delete("/push/subscriptions", unsubscribe.New(logger, s.Push).ServeHTTP)
			r.Post("/payments/checkout", checkout.New(logger, s.Payment).ServeHTTP)
		})

		// Триггер планировщика для внешнего cron (защищён токеном)
		r.Post("/reminders/run", reminderrun.New(logger, s.Reminder, s.ReminderCronToken).ServeHTTP)

		// Webhook endpoint (без аутентификации, подпись проверяется внутри)
		r.Post("/payments/webhook", paymentwebhook.New(logger, s.PaymentProvider, s.Payment).ServeHTTP)
	})

	r.Get("/health", health.New(logger, s.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
