// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и статус тарифа.
// Структура используется в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Тарифные статусы пользователя.
const (
	SubscriptionStatusFree    = "free"
	SubscriptionStatusPremium = "premium"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID               string    // Уникальный идентификатор пользователя
	Email              string    // Электронная почта для напоминаний
	Username           string    // Имя пользователя (уникальное)
	PasswordHash       string    // Хэш пароля пользователя
	Role               string    // Роль пользователя, admin или user
	SubscriptionStatus string    // Тариф: free или premium
	StripeCustomerID   *string   // Идентификатор покупателя в Stripe, если оформлял premium
	CreatedAt          time.Time // Дата регистрации
}
