package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechHookDev/trialwatch/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ReminderExists проверяет, есть ли в журнале доставленное напоминание
// для пары (trialID, kind). Это оптимизация: источником истины для
// дедупликации остаётся уникальный индекс, проверяемый в InsertReminder.
func (s *Storage) ReminderExists(ctx context.Context, trialID, kind string) (bool, error) {
	const op = "storage.ReminderExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM notifications
			      WHERE trial_id = $1 AND kind = $2 AND email_sent = true
			  )`
	if err := s.DB.QueryRowContext(ctx, query, trialID, kind).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertReminder записывает доставленное напоминание в журнал.
// При нарушении уникального индекса (trial_id, kind) возвращает
// ErrReminderAlreadySent: конкурирующий запуск уже отправил это
// напоминание, для вызывающей стороны это не ошибка.
func (s *Storage) InsertReminder(ctx context.Context, rec models.NotificationRecord) error {
	const op = "storage.InsertReminder"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (user_uid, trial_id, kind, email_sent, sent_at)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		rec.UserUID, rec.TrialID, rec.Kind, rec.EmailSent, rec.SentAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, ErrReminderAlreadySent)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListReminders возвращает журнал напоминаний пользователя с пагинацией.
func (s *Storage) ListReminders(ctx context.Context, userUID string, limit, offset int) ([]*models.NotificationRecord, error) {
	const op = "storage.ListReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, trial_id, kind, email_sent, sent_at
			  FROM notifications
			  WHERE user_uid = $1
			  ORDER BY sent_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.NotificationRecord
	for rows.Next() {
		var item models.NotificationRecord
		if err := rows.Scan(&item.ID, &item.UserUID, &item.TrialID, &item.Kind,
			&item.EmailSent, &item.SentAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
