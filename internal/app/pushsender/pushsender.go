// Package pushsender собирает воркер доставки push-уведомлений:
// он потребляет события об отправленных напоминаниях из RabbitMQ
// и рассылает их на подписанные устройства владельцев.
package pushsender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/TechHookDev/trialwatch/internal/config"
	"github.com/TechHookDev/trialwatch/internal/lib/rabbitmq"
	"github.com/TechHookDev/trialwatch/internal/lib/sl"
	libwebpush "github.com/TechHookDev/trialwatch/internal/lib/webpush"
	"github.com/TechHookDev/trialwatch/internal/models"
	pushservice "github.com/TechHookDev/trialwatch/internal/services/push"
	"github.com/TechHookDev/trialwatch/internal/storage/repository"
)

// App представляет приложение-воркер push-уведомлений.
type App struct {
	pushService *pushservice.PushService
	conn        *amqp.Connection
	ch          *amqp.Channel
	db          *repository.Storage
	logger      *slog.Logger
}

// New создает новый экземпляр воркера push-уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReminderQueues())
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Error("failed to close connection", sl.Err(cerr))
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Error("failed to close connection", sl.Err(cerr))
		}
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	pushClient := libwebpush.NewClient(cfg.VAPID)
	pushService := pushservice.NewPushService(db, pushClient, logger)

	return &App{
		pushService: pushService,
		conn:        conn,
		ch:          ch,
		db:          db,
		logger:      logger,
	}, nil
}

// Run потребляет события о напоминаниях до остановки контекста.
func (a *App) Run(ctx context.Context) error {
	queues := rabbitmq.GetReminderQueues()

	err := rabbitmq.ConsumeMessages(ctx, a.ch, queues[0].QueueName, func(body []byte) error {
		var event models.ReminderEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal reminder event: %w", err)
		}
		return a.pushService.Deliver(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	<-ctx.Done()

	a.logger.Info("shutting down push sender")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
