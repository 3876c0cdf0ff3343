package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TechHookDev/trialwatch/internal/lib/jwt"
	"github.com/TechHookDev/trialwatch/internal/lib/password"
	"github.com/TechHookDev/trialwatch/internal/models"
	"github.com/TechHookDev/trialwatch/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newMaker(t *testing.T) jwt.Maker {
	t.Helper()
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestRegister_Success(t *testing.T) {
	repo := &MockUserRepository{}
	svc := NewAuthService(repo, newMaker(t))

	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "owner@example.com" &&
			u.Username == "owner" &&
			u.Role == "user" &&
			u.SubscriptionStatus == models.SubscriptionStatusFree &&
			password.CompareHash(u.PasswordHash, "s3cret-pass") == nil
	})).Return("user-uid-1", nil)

	uid, err := svc.Register(context.Background(), "owner@example.com", "owner", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, "user-uid-1", uid)
	repo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	repo := &MockUserRepository{}
	maker := newMaker(t)
	svc := NewAuthService(repo, maker)

	hash, err := password.GetHash("s3cret-pass")
	require.NoError(t, err)

	repo.On("GetUserByUsername", mock.Anything, "owner").Return(&models.User{
		UUID:         "user-uid-1",
		Username:     "owner",
		PasswordHash: hash,
		Role:         "user",
	}, nil)

	token, role, err := svc.Login(context.Background(), "owner", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, "user", role)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Username)
	assert.Equal(t, "user-uid-1", claims.UserUID)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &MockUserRepository{}
	svc := NewAuthService(repo, newMaker(t))

	hash, err := password.GetHash("s3cret-pass")
	require.NoError(t, err)

	repo.On("GetUserByUsername", mock.Anything, "owner").Return(&models.User{
		Username:     "owner",
		PasswordHash: hash,
	}, nil)

	_, _, err = svc.Login(context.Background(), "owner", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := &MockUserRepository{}
	svc := NewAuthService(repo, newMaker(t))

	repo.On("GetUserByUsername", mock.Anything, "ghost").
		Return(nil, repository.ErrUserNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestValidateToken(t *testing.T) {
	maker := newMaker(t)
	svc := NewAuthService(&MockUserRepository{}, maker)

	token, err := maker.GenerateToken("owner", "user", "user-uid-1")
	require.NoError(t, err)

	user, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "owner", user.Username)
	assert.Equal(t, "user-uid-1", user.UUID)

	_, err = svc.ValidateToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}
