// Package paymentprovider оборачивает API платёжного провайдера Stripe:
// создание покупателей, checkout-сессий для premium-тарифа и проверку
// подписи входящих вебхуков.
package paymentprovider

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/TechHookDev/trialwatch/internal/config"
)

// Client выполняет запросы к Stripe от имени сервиса.
type Client struct {
	cfg config.Stripe
}

// NewClient создает новый экземпляр Client и устанавливает API-ключ.
func NewClient(cfg config.Stripe) *Client {
	stripe.Key = cfg.StripeSecretKey
	return &Client{cfg: cfg}
}

// CreateCustomer создает покупателя в Stripe и возвращает его ID.
func (c *Client) CreateCustomer(email string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession создает checkout-сессию на premium-тариф
// и возвращает URL для оплаты.
func (c *Client) CreateCheckoutSession(customerID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.cfg.PremiumPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.cfg.CheckoutSuccessURL),
		CancelURL:  stripe.String(c.cfg.CheckoutCancelURL),
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ConstructWebhookEvent проверяет подпись вебхука и возвращает событие.
func (c *Client) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.cfg.StripeWebhookSecret)
}
