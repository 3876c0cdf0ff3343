// Package webpush оборачивает отправку Web Push уведомлений через
// протокол VAPID.
package webpush

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/TechHookDev/trialwatch/internal/config"
	"github.com/TechHookDev/trialwatch/internal/models"
)

// ErrExpired возвращается, когда подписка более недействительна (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload описывает JSON, передаваемый push-сервису браузера.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Client отправляет уведомления с подписью VAPID ключами.
type Client struct {
	cfg config.VAPID
}

// NewClient создает новый экземпляр Client.
func NewClient(cfg config.VAPID) *Client {
	return &Client{cfg: cfg}
}

// VAPIDPublicKey возвращает публичный ключ для подписки на стороне клиента.
func (c *Client) VAPIDPublicKey() string {
	return c.cfg.VAPIDPublicKey
}

// Send отправляет одно уведомление на подписку.
func (c *Client) Send(sub *models.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  c.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: c.cfg.VAPIDPrivateKey,
		Subscriber:      c.cfg.VAPIDSubscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}
