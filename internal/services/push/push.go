// Package push содержит бизнес-логику доставки Web Push уведомлений:
// регистрацию подписок браузеров и рассылку событий о напоминаниях
// на все устройства владельца.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/TechHookDev/trialwatch/internal/lib/sl"
	"github.com/TechHookDev/trialwatch/internal/lib/webpush"
	"github.com/TechHookDev/trialwatch/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// SavePushSubscription сохраняет или обновляет подписку по endpoint.
	SavePushSubscription(ctx context.Context, sub models.PushSubscription) error
	// ListPushSubscriptions возвращает подписки пользователя.
	ListPushSubscriptions(ctx context.Context, userUID string) ([]*models.PushSubscription, error)
	// RemovePushSubscription удаляет подписку по endpoint.
	RemovePushSubscription(ctx context.Context, endpoint string) (int, error)
}

// Sender отправляет одно push-уведомление на подписку.
type Sender interface {
	Send(sub *models.PushSubscription, payload webpush.Payload) error
	VAPIDPublicKey() string
}

// PushService реализует регистрацию подписок и рассылку уведомлений.
type PushService struct {
	repo   SubscriptionRepository
	sender Sender
	log    *slog.Logger
}

// NewPushService создает новый экземпляр PushService.
func NewPushService(repo SubscriptionRepository, sender Sender, log *slog.Logger) *PushService {
	return &PushService{
		repo:   repo,
		sender: sender,
		log:    log,
	}
}

// VAPIDPublicKey возвращает публичный ключ для подписки на стороне браузера.
func (s *PushService) VAPIDPublicKey() string {
	return s.sender.VAPIDPublicKey()
}

// Subscribe сохраняет подписку браузера для пользователя.
func (s *PushService) Subscribe(ctx context.Context, userUID string, req models.DummyPushSubscription) error {
	sub := models.PushSubscription{
		UserUID:  userUID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := s.repo.SavePushSubscription(ctx, sub); err != nil {
		return err
	}
	s.log.Info("saved push subscription", slog.String("user_uid", userUID))
	return nil
}

// Unsubscribe удаляет подписку по endpoint.
func (s *PushService) Unsubscribe(ctx context.Context, endpoint string) error {
	_, err := s.repo.RemovePushSubscription(ctx, endpoint)
	return err
}

// Deliver рассылает событие о напоминании на все подписки владельца.
// Истекшие подписки удаляются из хранилища, остальные ошибки отправки
// только логируются: push — вспомогательный канал поверх письма.
func (s *PushService) Deliver(ctx context.Context, event models.ReminderEvent) error {
	const op = "services.push.Deliver"

	subs, err := s.repo.ListPushSubscriptions(ctx, event.UserUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(subs) == 0 {
		return nil
	}

	payload := webpush.Payload{
		Title: event.Subject,
		Body:  fmt.Sprintf("%s trial ends %s", event.TrialName, event.EndDate.Format("2006-01-02")),
		Tag:   fmt.Sprintf("trial-%s-%s", event.TrialID, event.Kind),
	}

	for _, sub := range subs {
		if err := s.sender.Send(sub, payload); err != nil {
			if errors.Is(err, webpush.ErrExpired) {
				if _, rmErr := s.repo.RemovePushSubscription(ctx, sub.Endpoint); rmErr != nil {
					s.log.Error("failed to prune expired subscription", sl.Err(rmErr))
				} else {
					s.log.Info("pruned expired push subscription",
						slog.String("endpoint", sub.Endpoint))
				}
				continue
			}
			s.log.Error("failed to send push notification", sl.Err(err))
		}
	}

	return nil
}
