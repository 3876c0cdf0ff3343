package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/TechHookDev/trialwatch/internal/models"
)

// ReminderPublisher публикует события об отправленных напоминаниях
// в exchange уведомлений с ключом маршрутизации напоминаний.
type ReminderPublisher struct {
	ch *amqp.Channel
}

// NewReminderPublisher создает новый экземпляр ReminderPublisher.
func NewReminderPublisher(ch *amqp.Channel) *ReminderPublisher {
	return &ReminderPublisher{ch: ch}
}

// Publish сериализует событие и отправляет его в брокер.
func (p *ReminderPublisher) Publish(event models.ReminderEvent) error {
	return PublishMessage(p.ch, NotificationsExchange, ReminderRoutingKey, event)
}
