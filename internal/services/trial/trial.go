// Package trial содержит бизнес-логику управления пробными периодами
// и их кешированием.
package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TechHookDev/trialwatch/internal/models"
)

// ErrFreeLimitReached возвращается при попытке создать пробный период
// сверх лимита бесплатного тарифа.
var ErrFreeLimitReached = errors.New("active trial limit reached for free plan")

// TrialRepository определяет методы для работы с пробными периодами в хранилище.
type TrialRepository interface {
	// CreateTrial добавляет новый пробный период и возвращает его ID.
	CreateTrial(ctx context.Context, trial models.Trial) (string, error)
	// ReadTrial возвращает пробный период по ID в пределах владельца.
	ReadTrial(ctx context.Context, id, userUID string) (*models.Trial, error)
	// UpdateTrial обновляет данные пробного периода.
	UpdateTrial(ctx context.Context, trial models.Trial, id, userUID string) (int, error)
	// UpdateTrialStatus меняет статус пробного периода.
	UpdateTrialStatus(ctx context.Context, id, userUID, status string) (int, error)
	// RemoveTrial удаляет пробный период и возвращает количество удалённых записей.
	RemoveTrial(ctx context.Context, id, userUID string) (int, error)
	// ListTrials возвращает список пробных периодов пользователя с пагинацией.
	ListTrials(ctx context.Context, userUID string, limit, offset int) ([]*models.Trial, error)
	// CountActiveTrials подсчитывает активные пробные периоды пользователя.
	CountActiveTrials(ctx context.Context, userUID string) (int, error)
}

// UserProvider возвращает данные пользователя для проверки тарифа.
type UserProvider interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// TrialService реализует бизнес-логику работы с пробными периодами.
type TrialService struct {
	repo           TrialRepository
	users          UserProvider
	cache          Cache
	log            *slog.Logger
	freeTrialLimit int
}

// NewTrialService создает новый экземпляр TrialService.
func NewTrialService(repo TrialRepository, users UserProvider, cache Cache,
	log *slog.Logger, freeTrialLimit int) *TrialService {
	return &TrialService{
		repo:           repo,
		users:          users,
		cache:          cache,
		log:            log,
		freeTrialLimit: freeTrialLimit,
	}
}

// Create создает новый пробный период. Дата окончания вычисляется как
// дата начала плюс длительность в днях. Для бесплатного тарифа действует
// лимит активных пробных периодов.
func (s *TrialService) Create(ctx context.Context, userUID string, req models.DummyTrial) (string, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return "", fmt.Errorf("invalid start date: %w", err)
	}
	endDate := startDate.AddDate(0, 0, req.TrialDays)

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return "", err
	}
	if user.SubscriptionStatus != models.SubscriptionStatusPremium {
		count, err := s.repo.CountActiveTrials(ctx, userUID)
		if err != nil {
			return "", err
		}
		if count >= s.freeTrialLimit {
			return "", ErrFreeLimitReached
		}
	}

	trial := models.Trial{
		UserUID:     userUID,
		Name:        req.Name,
		ServiceURL:  req.ServiceURL,
		MonthlyCost: req.MonthlyCost,
		TrialDays:   req.TrialDays,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      models.TrialStatusActive,
	}

	id, err := s.repo.CreateTrial(ctx, trial)
	if err != nil {
		return "", err
	}

	s.log.Info("created new trial", slog.String("id", id))

	trial.ID = id
	cacheKey := fmt.Sprintf("trial:%s", id)
	if err := s.cache.Set(cacheKey, trial, time.Hour); err != nil {
		s.log.Warn("failed to cache trial", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return id, nil
}

// Read возвращает пробный период по ID, используя кеш или репозиторий.
func (s *TrialService) Read(ctx context.Context, id, userUID string) (*models.Trial, error) {
	var result *models.Trial
	cacheKey := fmt.Sprintf("trial:%s", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found && result != nil && result.UserUID == userUID {
		return result, nil
	}
	result, err = s.repo.ReadTrial(ctx, id, userUID)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return result, nil
}

// Update обновляет пробный период и обновляет кеш.
func (s *TrialService) Update(ctx context.Context, req models.DummyTrial, id, userUID string) (int, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", err)
	}

	trial := models.Trial{
		UserUID:     userUID,
		Name:        req.Name,
		ServiceURL:  req.ServiceURL,
		MonthlyCost: req.MonthlyCost,
		TrialDays:   req.TrialDays,
		StartDate:   startDate,
		EndDate:     startDate.AddDate(0, 0, req.TrialDays),
	}
	res, err := s.repo.UpdateTrial(ctx, trial, id, userUID)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated trial in storage", slog.String("id", id))

	cacheKey := fmt.Sprintf("trial:%s", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return res, nil
}

// Cancel переводит пробный период в статус cancelled, после чего
// планировщик перестает присылать по нему напоминания.
func (s *TrialService) Cancel(ctx context.Context, id, userUID string) (int, error) {
	count, err := s.repo.UpdateTrialStatus(ctx, id, userUID, models.TrialStatusCancelled)
	if err != nil {
		return 0, err
	}

	cacheKey := fmt.Sprintf("trial:%s", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return count, nil
}

// Remove удаляет пробный период и инвалидирует кеш.
func (s *TrialService) Remove(ctx context.Context, id, userUID string) (int, error) {
	cacheKey := fmt.Sprintf("trial:%s", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.repo.RemoveTrial(ctx, id, userUID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// List возвращает список пробных периодов пользователя.
func (s *TrialService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Trial, error) {
	return s.repo.ListTrials(ctx, userUID, limit, offset)
}
