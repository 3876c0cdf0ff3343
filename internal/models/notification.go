// Package models содержит модель журнала отправленных напоминаний.
package models

import "time"

// NotificationRecord представляет одно доставленное напоминание.
// Пара (TrialID, Kind) уникальна: на одно окно напоминания по одному
// пробному периоду существует не более одной записи. Записи создаются
// планировщиком после успешной отправки и никогда не изменяются.
type NotificationRecord struct {
	ID        int       // Суррогатный идентификатор
	UserUID   string    // Владелец пробного периода
	TrialID   string    // Идентификатор пробного периода
	Kind      string    // Окно напоминания: 7d, 3d, 1d или 1h
	EmailSent bool      // true после успешной отправки письма
	SentAt    time.Time // Момент отправки
}

// ReminderEvent публикуется планировщиком в RabbitMQ после успешной
// отправки письма. Воркер push-уведомлений доставляет его на устройства
// владельца, это best-effort канал поверх основного письма.
type ReminderEvent struct {
	UserUID   string    `json:"user_uid"`
	TrialID   string    `json:"trial_id"`
	TrialName string    `json:"trial_name"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	EndDate   time.Time `json:"end_date"`
}
