package trial

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TechHookDev/trialwatch/internal/models"
)

type MockTrialRepository struct {
	mock.Mock
}

func (m *MockTrialRepository) CreateTrial(ctx context.Context, trial models.Trial) (string, error) {
	args := m.Called(ctx, trial)
	return args.String(0), args.Error(1)
}

func (m *MockTrialRepository) ReadTrial(ctx context.Context, id, userUID string) (*models.Trial, error) {
	args := m.Called(ctx, id, userUID)
	trial, _ := args.Get(0).(*models.Trial)
	return trial, args.Error(1)
}

func (m *MockTrialRepository) UpdateTrial(ctx context.Context, trial models.Trial, id, userUID string) (int, error) {
	args := m.Called(ctx, trial, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *MockTrialRepository) UpdateTrialStatus(ctx context.Context, id, userUID, status string) (int, error) {
	args := m.Called(ctx, id, userUID, status)
	return args.Int(0), args.Error(1)
}

func (m *MockTrialRepository) RemoveTrial(ctx context.Context, id, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *MockTrialRepository) ListTrials(ctx context.Context, userUID string, limit, offset int) ([]*models.Trial, error) {
	args := m.Called(ctx, userUID, limit, offset)
	trials, _ := args.Get(0).([]*models.Trial)
	return trials, args.Error(1)
}

func (m *MockTrialRepository) CountActiveTrials(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

type MockUserProvider struct {
	mock.Mock
}

func (m *MockUserProvider) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newService(repo *MockTrialRepository, users *MockUserProvider, cache *MockCache) *TrialService {
	return NewTrialService(repo, users, cache, slog.New(slog.DiscardHandler), 3)
}

func freeUser() *models.User {
	return &models.User{UUID: "user-1", SubscriptionStatus: models.SubscriptionStatusFree}
}

func premiumUser() *models.User {
	return &models.User{UUID: "user-1", SubscriptionStatus: models.SubscriptionStatusPremium}
}

func TestCreate_Success(t *testing.T) {
	repo := &MockTrialRepository{}
	users := &MockUserProvider{}
	cache := &MockCache{}
	svc := newService(repo, users, cache)

	users.On("GetUser", mock.Anything, "user-1").Return(freeUser(), nil)
	repo.On("CountActiveTrials", mock.Anything, "user-1").Return(1, nil)
	repo.On("CreateTrial", mock.Anything, mock.MatchedBy(func(tr models.Trial) bool {
		wantEnd := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
		return tr.Name == "StreamCo" &&
			tr.Status == models.TrialStatusActive &&
			tr.EndDate.Equal(wantEnd)
	})).Return("trial-id-1", nil)
	cache.On("Set", "trial:trial-id-1", mock.Anything, time.Hour).Return(nil)

	id, err := svc.Create(context.Background(), "user-1", models.DummyTrial{
		Name:      "StreamCo",
		TrialDays: 14,
		StartDate: "2026-08-30",
	})

	require.NoError(t, err)
	assert.Equal(t, "trial-id-1", id)
	repo.AssertExpectations(t)
}

func TestCreate_InvalidStartDate(t *testing.T) {
	svc := newService(&MockTrialRepository{}, &MockUserProvider{}, &MockCache{})

	_, err := svc.Create(context.Background(), "user-1", models.DummyTrial{
		Name:      "StreamCo",
		TrialDays: 14,
		StartDate: "30-08-2026",
	})

	assert.ErrorContains(t, err, "invalid start date")
}

func TestCreate_FreeLimitReached(t *testing.T) {
	repo := &MockTrialRepository{}
	users := &MockUserProvider{}
	svc := newService(repo, users, &MockCache{})

	users.On("GetUser", mock.Anything, "user-1").Return(freeUser(), nil)
	repo.On("CountActiveTrials", mock.Anything, "user-1").Return(3, nil)

	_, err := svc.Create(context.Background(), "user-1", models.DummyTrial{
		Name:      "StreamCo",
		TrialDays: 7,
		StartDate: "2026-08-30",
	})

	assert.ErrorIs(t, err, ErrFreeLimitReached)
	repo.AssertNotCalled(t, "CreateTrial", mock.Anything, mock.Anything)
}

func TestCreate_PremiumSkipsLimit(t *testing.T) {
	repo := &MockTrialRepository{}
	users := &MockUserProvider{}
	cache := &MockCache{}
	svc := newService(repo, users, cache)

	users.On("GetUser", mock.Anything, "user-1").Return(premiumUser(), nil)
	repo.On("CreateTrial", mock.Anything, mock.Anything).Return("trial-id-2", nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	id, err := svc.Create(context.Background(), "user-1", models.DummyTrial{
		Name:      "CloudDrive",
		TrialDays: 30,
		StartDate: "2026-08-30",
	})

	require.NoError(t, err)
	assert.Equal(t, "trial-id-2", id)
	repo.AssertNotCalled(t, "CountActiveTrials", mock.Anything, mock.Anything)
}

func TestRead_CacheHit(t *testing.T) {
	repo := &MockTrialRepository{}
	cache := &MockCache{}
	svc := newService(repo, &MockUserProvider{}, cache)

	cached := &models.Trial{ID: "trial-id-1", UserUID: "user-1", Name: "StreamCo"}
	cache.On("Get", "trial:trial-id-1", mock.Anything).
		Run(func(args mock.Arguments) {
			ptr := args.Get(1).(**models.Trial)
			*ptr = cached
		}).Return(true, nil)

	trial, err := svc.Read(context.Background(), "trial-id-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "StreamCo", trial.Name)
	repo.AssertNotCalled(t, "ReadTrial", mock.Anything, mock.Anything, mock.Anything)
}

func TestRead_CacheMiss(t *testing.T) {
	repo := &MockTrialRepository{}
	cache := &MockCache{}
	svc := newService(repo, &MockUserProvider{}, cache)

	stored := &models.Trial{ID: "trial-id-1", UserUID: "user-1", Name: "StreamCo"}
	cache.On("Get", "trial:trial-id-1", mock.Anything).Return(false, nil)
	repo.On("ReadTrial", mock.Anything, "trial-id-1", "user-1").Return(stored, nil)
	cache.On("Set", "trial:trial-id-1", stored, time.Hour).Return(nil)

	trial, err := svc.Read(context.Background(), "trial-id-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, stored, trial)
	cache.AssertExpectations(t)
}

func TestCancel_Success(t *testing.T) {
	repo := &MockTrialRepository{}
	cache := &MockCache{}
	svc := newService(repo, &MockUserProvider{}, cache)

	repo.On("UpdateTrialStatus", mock.Anything, "trial-id-1", "user-1", models.TrialStatusCancelled).
		Return(1, nil)
	cache.On("Invalidate", "trial:trial-id-1").Return(nil)

	count, err := svc.Cancel(context.Background(), "trial-id-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
}

func TestRemove_StorageError(t *testing.T) {
	repo := &MockTrialRepository{}
	cache := &MockCache{}
	svc := newService(repo, &MockUserProvider{}, cache)

	cache.On("Invalidate", "trial:trial-id-1").Return(nil)
	repo.On("RemoveTrial", mock.Anything, "trial-id-1", "user-1").
		Return(0, errors.New("connection refused"))

	_, err := svc.Remove(context.Background(), "trial-id-1", "user-1")
	assert.Error(t, err)
}

func TestList_Success(t *testing.T) {
	repo := &MockTrialRepository{}
	svc := newService(repo, &MockUserProvider{}, &MockCache{})

	trials := []*models.Trial{{ID: "a"}, {ID: "b"}}
	repo.On("ListTrials", mock.Anything, "user-1", 10, 0).Return(trials, nil)

	got, err := svc.List(context.Background(), "user-1", 10, 0)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}
