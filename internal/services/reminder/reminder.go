// Package reminder реализует планировщик напоминаний об истекающих
// пробных периодах. Каждый цикл обходит окна напоминаний в фиксированном
// порядке, находит активные пробные периоды, чья дата окончания попадает
// в допуск вокруг окна, и отправляет не более одного письма на пару
// (trial, окно). Журнал отправок с уникальным индексом служит источником
// истины при конкурентных запусках.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TechHookDev/trialwatch/internal/lib/sl"
	"github.com/TechHookDev/trialwatch/internal/models"
	"github.com/TechHookDev/trialwatch/internal/storage/repository"
)

// Окна напоминаний.
const (
	WindowKind7d = "7d"
	WindowKind3d = "3d"
	WindowKind1d = "1d"
	WindowKind1h = "1h"
)

// Window описывает одно окно напоминания: его имя и расстояние
// до даты окончания пробного периода.
type Window struct {
	Kind      string
	Threshold time.Duration
}

// Windows перечисляет окна в порядке обработки.
var Windows = []Window{
	{Kind: WindowKind7d, Threshold: 7 * 24 * time.Hour},
	{Kind: WindowKind3d, Threshold: 3 * 24 * time.Hour},
	{Kind: WindowKind1d, Threshold: 24 * time.Hour},
	{Kind: WindowKind1h, Threshold: time.Hour},
}

// TrialProvider отдает активные пробные периоды, заканчивающиеся
// в заданном интервале (границы включительно).
type TrialProvider interface {
	FindActiveTrialsEndingBetween(ctx context.Context, start, end time.Time) ([]*models.TrialInfo, error)
}

// Ledger хранит журнал уже отправленных напоминаний.
type Ledger interface {
	ReminderExists(ctx context.Context, trialID, kind string) (bool, error)
	InsertReminder(ctx context.Context, rec models.NotificationRecord) error
}

// ProfileProvider разрешает адрес почты владельца пробного периода.
// Пустой адрес без ошибки означает, что профиль не найден или не заполнен.
type ProfileProvider interface {
	GetUserEmail(ctx context.Context, userUID string) (string, error)
}

// Notifier отправляет письма. Configured сообщает об отсутствии
// учётных данных до начала обработки.
type Notifier interface {
	Configured() error
	Send(to, subject, body string) error
}

// EventPublisher рассылает события об отправленных письмах воркеру
// push-уведомлений. Канал необязательный, ошибка публикации не влияет
// на результат цикла.
type EventPublisher interface {
	Publish(event models.ReminderEvent) error
}

// CycleResult суммирует один запуск планировщика.
type CycleResult struct {
	Sent      int      `json:"sent"`
	Reminders []string `json:"reminders"`
}

// ReminderService выполняет циклы отправки напоминаний.
type ReminderService struct {
	log           *slog.Logger
	trials        TrialProvider
	ledger        Ledger
	profiles      ProfileProvider
	notifier      Notifier
	publisher     EventPublisher
	bandHalfWidth time.Duration
}

// NewReminderService создает новый экземпляр ReminderService.
// publisher может быть nil, тогда события в брокер не публикуются.
func NewReminderService(log *slog.Logger, trials TrialProvider, ledger Ledger,
	profiles ProfileProvider, notifier Notifier, publisher EventPublisher,
	bandHalfWidth time.Duration) *ReminderService {
	return &ReminderService{
		log:           log,
		trials:        trials,
		ledger:        ledger,
		profiles:      profiles,
		notifier:      notifier,
		publisher:     publisher,
		bandHalfWidth: bandHalfWidth,
	}
}

// RunCycle выполняет один цикл планировщика относительно момента now.
// Ошибка возвращается только при проблемах конфигурации или хранилища,
// сбой отправки по отдельному пробному периоду не прерывает цикл:
// без записи в журнале он будет повторён на следующем запуске, пока
// дата окончания остается внутри допуска.
func (s *ReminderService) RunCycle(ctx context.Context, now time.Time) (*CycleResult, error) {
	const op = "services.reminder.RunCycle"

	if err := s.notifier.Configured(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &CycleResult{Reminders: []string{}}

	for _, window := range Windows {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		default:
		}

		start := now.Add(window.Threshold - s.bandHalfWidth)
		end := now.Add(window.Threshold + s.bandHalfWidth)

		trials, err := s.trials.FindActiveTrialsEndingBetween(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		for _, trial := range trials {
			s.processTrial(ctx, trial, window, now, result)
		}
	}

	return result, nil
}

func (s *ReminderService) processTrial(ctx context.Context, trial *models.TrialInfo,
	window Window, now time.Time, result *CycleResult) {
	log := s.log.With(
		slog.String("trial_id", trial.ID),
		slog.String("window", window.Kind),
	)

	exists, err := s.ledger.ReminderExists(ctx, trial.ID, window.Kind)
	if err != nil {
		log.Error("failed to check reminder ledger", sl.Err(err))
		return
	}
	if exists {
		return
	}

	email, err := s.profiles.GetUserEmail(ctx, trial.UserUID)
	if err != nil {
		log.Error("failed to resolve user email", sl.Err(err))
		return
	}
	if email == "" {
		log.Warn("user has no email, skipping trial for this cycle")
		return
	}

	subject, body, err := Render(window.Kind, trial.Name, trial.EndDate, trial.MonthlyCost, trial.ServiceURL)
	if err != nil {
		log.Error("failed to render reminder", sl.Err(err))
		return
	}

	if err := s.notifier.Send(email, subject, body); err != nil {
		log.Error("failed to send reminder email", sl.Err(err))
		return
	}

	rec := models.NotificationRecord{
		UserUID:   trial.UserUID,
		TrialID:   trial.ID,
		Kind:      window.Kind,
		EmailSent: true,
		SentAt:    now,
	}
	if err := s.ledger.InsertReminder(ctx, rec); err != nil {
		if !errors.Is(err, repository.ErrReminderAlreadySent) {
			log.Error("failed to record sent reminder", sl.Err(err))
			return
		}
		// Конкурентный запуск успел первым, письмо уже доставлено им.
		log.Info("reminder already recorded by concurrent run")
	}

	result.Sent++
	result.Reminders = append(result.Reminders, trial.Name+" - "+window.Kind)

	if s.publisher != nil {
		event := models.ReminderEvent{
			UserUID:   trial.UserUID,
			TrialID:   trial.ID,
			TrialName: trial.Name,
			Kind:      window.Kind,
			Subject:   subject,
			EndDate:   trial.EndDate,
		}
		if err := s.publisher.Publish(event); err != nil {
			log.Error("failed to publish reminder event", sl.Err(err))
		}
	}

	log.Info("reminder sent", slog.String("trial_name", trial.Name))
}
