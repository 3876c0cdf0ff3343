package reminder

import (
	"fmt"
	"strconv"
	"time"
)

// Шаблоны писем по окнам напоминания. Тон нарастает от информационного
// (7d, 3d) к срочному (1d, 1h).
var reminderTemplates = map[string]struct {
	subject string
	body    string
}{
	WindowKind7d: {
		subject: "Your %s trial ends in 7 days",
		body: `Hey there!

Your %s free trial ends in 7 days (%s).

Monthly cost: $%s
Don't forget to cancel if you don't want to be charged!

Cancel here: %s

Best,
TrialWatch Team`,
	},
	WindowKind3d: {
		subject: "⚠️ 3 days left on your %s trial",
		body: `Hey there!

Only 3 days left on your %s trial!

Ends: %s
Monthly cost: $%s

Don't get charged unexpectedly. Cancel here: %s

Best,
TrialWatch Team`,
	},
	WindowKind1d: {
		subject: "🚨 URGENT: Your %s trial ends tomorrow!",
		body: `Hey!

Your %s trial ENDS TOMORROW (%s)!

You will be charged $%s/month if you don't cancel now.

CANCEL IMMEDIATELY: %s

TrialWatch Team`,
	},
	WindowKind1h: {
		subject: "🔴 FINAL WARNING: %s trial expires in 1 hour!",
		body: `URGENT!

Your %s trial expires in 1 HOUR!

Time: %s
Charge amount: $%s/month

CANCEL RIGHT NOW: %s

This is your final warning!

TrialWatch Team`,
	},
}

// Render детерминированно строит тему и текст письма для окна kind.
// Чистая функция без ввода-вывода: отсутствующая стоимость выводится как 0,
// отсутствующая ссылка заменяется на "#". Ошибка возможна только для
// неизвестного окна.
func Render(kind, name string, endDate time.Time, monthlyCost *float64, serviceURL *string) (string, string, error) {
	const op = "reminder.Render"

	tmpl, ok := reminderTemplates[kind]
	if !ok {
		return "", "", fmt.Errorf("%s: unknown reminder window %q", op, kind)
	}

	cost := "0"
	if monthlyCost != nil {
		cost = strconv.FormatFloat(*monthlyCost, 'f', -1, 64)
	}

	url := "#"
	if serviceURL != nil && *serviceURL != "" {
		url = *serviceURL
	}

	subject := fmt.Sprintf(tmpl.subject, name)
	body := fmt.Sprintf(tmpl.body, name, endDate.Format("2006-01-02"), cost, url)

	return subject, body, nil
}
