package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TechHookDev/trialwatch/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его ID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, role, subscription_status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
		user.SubscriptionStatus).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUser(ctx, op, `SELECT uid, email, username, password_hash, role,
			      subscription_status, stripe_customer_id, created_at
			  FROM users
			  WHERE username = $1`, username)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	return s.getUser(ctx, op, `SELECT uid, email, username, password_hash, role,
			      subscription_status, stripe_customer_id, created_at
			  FROM users
			  WHERE uid = $1`, userUID)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var stripeCustomerID sql.NullString
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.SubscriptionStatus, &stripeCustomerID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if stripeCustomerID.Valid {
		u.StripeCustomerID = &stripeCustomerID.String
	}
	return u, nil
}

// GetUserEmail возвращает адрес почты пользователя по UID.
// Отсутствие пользователя или пустой адрес не является ошибкой: планировщик
// в этом случае пропускает пробный период до следующего цикла.
func (s *Storage) GetUserEmail(ctx context.Context, userUID string) (string, error) {
	const op = "storage.GetUserEmail"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var email sql.NullString
	query := `SELECT email FROM users WHERE uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !email.Valid {
		return "", nil
	}
	return email.String, nil
}

// UpdateSubscriptionStatus меняет тариф пользователя (free или premium)
// и сохраняет идентификатор покупателя Stripe, если он известен.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, userUID, status string, stripeCustomerID *string) (int, error) {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1,
			      stripe_customer_id = COALESCE($2, stripe_customer_id)
			  WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, status, stripeCustomerID, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetUserByStripeCustomerID возвращает пользователя по идентификатору покупателя Stripe.
func (s *Storage) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByStripeCustomerID"
	return s.getUser(ctx, op, `SELECT uid, email, username, password_hash, role,
			      subscription_status, stripe_customer_id, created_at
			  FROM users
			  WHERE stripe_customer_id = $1`, customerID)
}
