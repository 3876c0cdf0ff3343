package rabbitmq

// Имена exchange и очереди событий о напоминаниях.
const (
	NotificationsExchange = "notifications"
	ReminderQueue         = "notification.reminder"
	ReminderRoutingKey    = "reminder"
)

// QueueConfig описывает очередь и ключ маршрутизации в exchange уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetReminderQueues перечисляет очереди, в которые планировщик публикует
// события об отправленных напоминаниях.
func GetReminderQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ReminderQueue, RoutingKey: ReminderRoutingKey},
	}
}
