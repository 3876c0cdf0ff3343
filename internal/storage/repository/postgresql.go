// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пробными периодами, пользователями, журналом напоминаний
// и push-подписками.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища.
var (
	// ErrReminderAlreadySent возвращается при попытке повторно записать
	// напоминание для пары (trial, kind): уникальный индекс в таблице
	// notifications является источником истины для дедупликации.
	ErrReminderAlreadySent = errors.New("reminder already recorded")
	// ErrTrialNotFound возвращается, когда пробный период не найден.
	ErrTrialNotFound = errors.New("trial not found")
	// ErrUserNotFound возвращается, когда пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с доменными сущностями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'trials'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table trials missing or query error: %w", err)
	}
	return nil
}
