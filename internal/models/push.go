package models

import "time"

// PushSubscription представляет подписку браузера на push-уведомления (Web Push).
type PushSubscription struct {
	ID        int       // Суррогатный идентификатор
	UserUID   string    // Владелец подписки
	Endpoint  string    // URL push-сервиса браузера (уникален)
	P256dh    string    // Публичный ключ клиента
	Auth      string    // Секрет аутентификации клиента
	CreatedAt time.Time // Дата регистрации подписки
}

// DummyPushSubscription используется для приёма подписки из JSON-запроса
// в том виде, в котором её отдаёт PushManager браузера.
type DummyPushSubscription struct {
	Endpoint string `json:"endpoint" validate:"required,uri"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}
