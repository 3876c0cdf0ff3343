// Package trialwatch собирает основное HTTP-приложение: хранилище,
// миграции, кеш, брокер сообщений и все сервисы с маршрутами.
package trialwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/TechHookDev/trialwatch/internal/cache"
	"github.com/TechHookDev/trialwatch/internal/config"
	"github.com/TechHookDev/trialwatch/internal/lib/jwt"
	"github.com/TechHookDev/trialwatch/internal/lib/rabbitmq"
	"github.com/TechHookDev/trialwatch/internal/lib/smtp"
	libwebpush "github.com/TechHookDev/trialwatch/internal/lib/webpush"
	"github.com/TechHookDev/trialwatch/internal/migrations"
	"github.com/TechHookDev/trialwatch/internal/paymentprovider"
	authservice "github.com/TechHookDev/trialwatch/internal/services/auth"
	paymentservice "github.com/TechHookDev/trialwatch/internal/services/payment"
	pushservice "github.com/TechHookDev/trialwatch/internal/services/push"
	reminderservice "github.com/TechHookDev/trialwatch/internal/services/reminder"
	senderservice "github.com/TechHookDev/trialwatch/internal/services/sender"
	trialservice "github.com/TechHookDev/trialwatch/internal/services/trial"
	"github.com/TechHookDev/trialwatch/internal/storage/repository"
)

// App представляет основное HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает приложение: подключает зависимости и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReminderQueues())
	if err != nil {
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker)
	trialService := trialservice.NewTrialService(db, db, cacheRedis, logger, cfg.FreeTrialLimit)

	senderService := senderservice.NewSenderService(cfg.SMTP, logger, smtp.NewTransport(cfg.SMTP, logger))
	publisher := rabbitmq.NewReminderPublisher(ch)
	reminderService := reminderservice.NewReminderService(logger, db, db, db,
		senderService, publisher, cfg.BandHalfWidth)

	pushClient := libwebpush.NewClient(cfg.VAPID)
	pushService := pushservice.NewPushService(db, pushClient, logger)

	providerClient := paymentprovider.NewClient(cfg.Stripe)
	paymentService := paymentservice.NewPaymentService(providerClient, db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:              authService,
		Trial:             trialService,
		Reminder:          reminderService,
		Push:              pushService,
		Payment:           paymentService,
		PaymentProvider:   providerClient,
		Storage:           db,
		ReminderCronToken: cfg.CronToken,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до остановки контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", cerr))
		}
		return err
	}
}
