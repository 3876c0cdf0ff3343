package repository

import (
	"context"
	"fmt"

	"github.com/TechHookDev/trialwatch/internal/models"
)

// SavePushSubscription сохраняет push-подписку браузера. Повторная
// регистрация того же endpoint обновляет ключи (браузер мог их сменить).
func (s *Storage) SavePushSubscription(ctx context.Context, sub models.PushSubscription) error {
	const op = "storage.SavePushSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO push_subscriptions (user_uid, endpoint, p256dh, auth_key)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (endpoint) DO UPDATE
			  SET user_uid = EXCLUDED.user_uid,
			      p256dh = EXCLUDED.p256dh,
			      auth_key = EXCLUDED.auth_key`
	_, err := s.DB.ExecContext(ctx, query, sub.UserUID, sub.Endpoint, sub.P256dh, sub.Auth)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPushSubscriptions возвращает все push-подписки пользователя.
func (s *Storage) ListPushSubscriptions(ctx context.Context, userUID string) ([]*models.PushSubscription, error) {
	const op = "storage.ListPushSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, endpoint, p256dh, auth_key, created_at
			  FROM push_subscriptions
			  WHERE user_uid = $1`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.PushSubscription
	for rows.Next() {
		var item models.PushSubscription
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Endpoint,
			&item.P256dh, &item.Auth, &item.CreatedAt); err != nil {
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

// RemovePushSubscription удаляет подписку по endpoint. Используется и при
// явной отписке пользователя, и при получении 410 Gone от push-сервиса.
func (s *Storage) RemovePushSubscription(ctx context.Context, endpoint string) (int, error) {
	const op = "storage.RemovePushSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM push_subscriptions WHERE endpoint = $1`
	result, err := s.DB.ExecContext(ctx, query, endpoint)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
