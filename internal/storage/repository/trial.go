package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TechHookDev/trialwatch/internal/models"
)

// CreateTrial вставляет новый пробный период и возвращает его ID.
func (s *Storage) CreateTrial(ctx context.Context, trial models.Trial) (string, error) {
	const op = "storage.CreateTrial"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO trials (user_uid, name, service_url, monthly_cost,
			      trial_days, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		trial.UserUID, trial.Name, trial.ServiceURL, trial.MonthlyCost,
		trial.TrialDays, trial.StartDate, trial.EndDate, trial.Status).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadTrial возвращает данные пробного периода по его ID и владельцу.
func (s *Storage) ReadTrial(ctx context.Context, id, userUID string) (*models.Trial, error) {
	const op = "storage.ReadTrial"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, service_url, monthly_cost, trial_days,
				start_date, end_date, status, created_at
			  FROM trials WHERE id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userUID)

	result, err := scanTrial(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrTrialNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTrial обновляет данные пробного периода и возвращает количество изменённых строк.
func (s *Storage) UpdateTrial(ctx context.Context, trial models.Trial, id, userUID string) (int, error) {
	const op = "storage.UpdateTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE trials
			  SET name = $1, service_url = $2, monthly_cost = $3, trial_days = $4,
			      start_date = $5, end_date = $6
			  WHERE id = $7 AND user_uid = $8`
	result, err := s.DB.ExecContext(ctx, query,
		trial.Name, trial.ServiceURL, trial.MonthlyCost, trial.TrialDays,
		trial.StartDate, trial.EndDate, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateTrialStatus переводит пробный период в новый статус (например cancelled).
func (s *Storage) UpdateTrialStatus(ctx context.Context, id, userUID, status string) (int, error) {
	const op = "storage.UpdateTrialStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE trials SET status = $1 WHERE id = $2 AND user_uid = $3`
	result, err := s.DB.ExecContext(ctx, query, status, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveTrial удаляет пробный период и возвращает количество удалённых строк.
func (s *Storage) RemoveTrial(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.RemoveTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM trials WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListTrials возвращает список пробных периодов пользователя с пагинацией.
func (s *Storage) ListTrials(ctx context.Context, userUID string, limit, offset int) ([]*models.Trial, error) {
	const op = "storage.ListTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, service_url, monthly_cost, trial_days,
				start_date, end_date, status, created_at
			  FROM trials
			  WHERE user_uid = $1
			  ORDER BY end_date
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.Trial
	for rows.Next() {
		item, err := scanTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveTrials подсчитывает активные пробные периоды пользователя.
// Используется для проверки лимита бесплатного тарифа.
func (s *Storage) CountActiveTrials(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountActiveTrials"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM trials WHERE user_uid = $1 AND status = $2`
	if err := s.DB.QueryRowContext(ctx, query, userUID, models.TrialStatusActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// FindActiveTrialsEndingBetween возвращает активные пробные периоды, дата
// окончания которых попадает в полосу [start, end] (границы включительно).
// Это единственный запрос, который выполняет планировщик напоминаний.
func (s *Storage) FindActiveTrialsEndingBetween(ctx context.Context, start, end time.Time) ([]*models.TrialInfo, error) {
	const op = "storage.FindActiveTrialsEndingBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, end_date, monthly_cost, service_url, user_uid
			  FROM trials
			  WHERE status = $1 AND end_date >= $2 AND end_date <= $3`
	rows, err := s.DB.QueryContext(ctx, query, models.TrialStatusActive, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.TrialInfo
	for rows.Next() {
		var item models.TrialInfo
		var monthlyCost sql.NullFloat64
		var serviceURL sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.EndDate, &monthlyCost,
			&serviceURL, &item.UserUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if monthlyCost.Valid {
			item.MonthlyCost = &monthlyCost.Float64
		}
		if serviceURL.Valid {
			item.ServiceURL = &serviceURL.String
		}
		result = append(result, &item)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// scanner объединяет *sql.Row и *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrial(row scanner) (*models.Trial, error) {
	var item models.Trial
	var monthlyCost sql.NullFloat64
	var serviceURL sql.NullString
	if err := row.Scan(&item.ID, &item.UserUID, &item.Name, &serviceURL, &monthlyCost,
		&item.TrialDays, &item.StartDate, &item.EndDate, &item.Status, &item.CreatedAt); err != nil {
		return nil, err
	}
	if monthlyCost.Valid {
		item.MonthlyCost = &monthlyCost.Float64
	}
	if serviceURL.Valid {
		item.ServiceURL = &serviceURL.String
	}
	return &item, nil
}
