// Package payment содержит бизнес-логику перевода пользователей на
// premium-тариф через платёжного провайдера.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/TechHookDev/trialwatch/internal/lib/sl"
	"github.com/TechHookDev/trialwatch/internal/models"
)

// Provider описывает операции платёжного провайдера.
type Provider interface {
	// CreateCustomer создает покупателя и возвращает его ID.
	CreateCustomer(email string) (string, error)
	// CreateCheckoutSession создает сессию оплаты и возвращает её URL.
	CreateCheckoutSession(customerID string) (string, error)
}

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	UpdateSubscriptionStatus(ctx context.Context, userUID, status string, stripeCustomerID *string) (int, error)
}

// PaymentService связывает события провайдера со статусом подписки пользователя.
type PaymentService struct {
	provider Provider
	users    UserRepository
	log      *slog.Logger
}

// NewPaymentService создает новый экземпляр PaymentService.
func NewPaymentService(provider Provider, users UserRepository, log *slog.Logger) *PaymentService {
	return &PaymentService{
		provider: provider,
		users:    users,
		log:      log,
	}
}

// CreateCheckout создает сессию оплаты premium-тарифа для пользователя.
// Покупатель у провайдера создается при первом обращении и сохраняется
// в профиле пользователя.
func (s *PaymentService) CreateCheckout(ctx context.Context, userUID string) (string, error) {
	const op = "services.payment.CreateCheckout"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(user.Email)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if _, err := s.users.UpdateSubscriptionStatus(ctx, userUID, user.SubscriptionStatus, &customerID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	url, err := s.provider.CreateCheckoutSession(customerID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// HandleWebhook обрабатывает событие провайдера: успешная оплата переводит
// пользователя на premium, отмена подписки возвращает на бесплатный тариф.
// Незнакомые типы событий игнорируются.
func (s *PaymentService) HandleWebhook(ctx context.Context, event stripe.Event) error {
	const op = "services.payment.HandleWebhook"

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%s: unmarshal checkout session: %w", op, err)
		}
		if sess.Customer == nil {
			s.log.Warn("checkout session without customer", slog.String("event_id", event.ID))
			return nil
		}
		return s.setStatusByCustomer(ctx, op, sess.Customer.ID, models.SubscriptionStatusPremium)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: unmarshal subscription: %w", op, err)
		}
		if sub.Customer == nil {
			return nil
		}
		return s.setStatusByCustomer(ctx, op, sub.Customer.ID, models.SubscriptionStatusFree)

	default:
		s.log.Info("skipping webhook event", slog.String("type", string(event.Type)))
		return nil
	}
}

func (s *PaymentService) setStatusByCustomer(ctx context.Context, op, customerID, status string) error {
	user, err := s.users.GetUserByStripeCustomerID(ctx, customerID)
	if err != nil {
		s.log.Error("failed to find user for stripe customer",
			slog.String("customer_id", customerID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.users.UpdateSubscriptionStatus(ctx, user.UUID, status, &customerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("updated subscription status",
		slog.String("user_uid", user.UUID), slog.String("status", status))
	return nil
}
