// Package reminder собирает фоновый воркер планировщика напоминаний:
// он выполняет цикл отправки с фиксированной периодичностью без участия
// внешнего HTTP-триггера.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/TechHookDev/trialwatch/internal/config"
	"github.com/TechHookDev/trialwatch/internal/lib/rabbitmq"
	"github.com/TechHookDev/trialwatch/internal/lib/sl"
	"github.com/TechHookDev/trialwatch/internal/lib/smtp"
	reminderservice "github.com/TechHookDev/trialwatch/internal/services/reminder"
	senderservice "github.com/TechHookDev/trialwatch/internal/services/sender"
	"github.com/TechHookDev/trialwatch/internal/storage/repository"
)

// App представляет приложение-воркер напоминаний.
type App struct {
	reminderService *reminderservice.ReminderService
	cadence         time.Duration
	conn            *amqp.Connection
	ch              *amqp.Channel
	db              *repository.Storage
	logger          *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		select {
		case <-time.After(3 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр воркера напоминаний.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReminderQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	senderService := senderservice.NewSenderService(cfg.SMTP, logger, smtp.NewTransport(cfg.SMTP, logger))
	publisher := rabbitmq.NewReminderPublisher(ch)
	reminderService := reminderservice.NewReminderService(logger, db, db, db,
		senderService, publisher, cfg.BandHalfWidth)

	// Периодичность и полуширина допуска выбираются совместно:
	// допуск должен перекрывать интервал между запусками.
	logger.Info("reminder worker configured",
		slog.Duration("cadence", cfg.Cadence),
		slog.Duration("band_half_width", cfg.BandHalfWidth))

	return &App{
		reminderService: reminderService,
		cadence:         cfg.Cadence,
		conn:            conn,
		ch:              ch,
		db:              db,
		logger:          logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run выполняет цикл немедленно и далее по тикеру, пока контекст жив.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cadence)
	defer ticker.Stop()

	a.runCycle(ctx)

	for {
		select {
		case <-ticker.C:
			a.runCycle(ctx)
		case <-ctx.Done():
			a.logger.Info("shutting down reminder worker")
			closeResources(a.ch, a.conn, a.logger)
			if err := a.db.DB.Close(); err != nil {
				a.logger.Error("failed to close storage", sl.Err(err))
			}
			return nil
		}
	}
}

func (a *App) runCycle(ctx context.Context) {
	result, err := a.reminderService.RunCycle(ctx, time.Now().UTC())
	if err != nil {
		a.logger.Error("reminder cycle failed", sl.Err(err))
		return
	}
	a.logger.Info("reminder cycle finished",
		slog.Int("sent", result.Sent),
		slog.Any("reminders", result.Reminders))
}
