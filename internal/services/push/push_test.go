package push

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TechHookDev/trialwatch/internal/lib/webpush"
	"github.com/TechHookDev/trialwatch/internal/models"
)

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) SavePushSubscription(ctx context.Context, sub models.PushSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListPushSubscriptions(ctx context.Context, userUID string) ([]*models.PushSubscription, error) {
	args := m.Called(ctx, userUID)
	subs, _ := args.Get(0).([]*models.PushSubscription)
	return subs, args.Error(1)
}

func (m *MockSubscriptionRepository) RemovePushSubscription(ctx context.Context, endpoint string) (int, error) {
	args := m.Called(ctx, endpoint)
	return args.Int(0), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(sub *models.PushSubscription, payload webpush.Payload) error {
	args := m.Called(sub, payload)
	return args.Error(0)
}

func (m *MockSender) VAPIDPublicKey() string {
	args := m.Called()
	return args.String(0)
}

func event() models.ReminderEvent {
	return models.ReminderEvent{
		UserUID:   "user-1",
		TrialID:   "trial-id-1",
		TrialName: "StreamCo",
		Kind:      "3d",
		Subject:   "⚠️ 3 days left on your StreamCo trial",
		EndDate:   time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestSubscribe(t *testing.T) {
	repo := &MockSubscriptionRepository{}
	svc := NewPushService(repo, &MockSender{}, slog.New(slog.DiscardHandler))

	var req models.DummyPushSubscription
	req.Endpoint = "https://push.example/sub/abc"
	req.Keys.P256dh = "p256dh-key"
	req.Keys.Auth = "auth-secret"

	repo.On("SavePushSubscription", mock.Anything, models.PushSubscription{
		UserUID:  "user-1",
		Endpoint: "https://push.example/sub/abc",
		P256dh:   "p256dh-key",
		Auth:     "auth-secret",
	}).Return(nil)

	err := svc.Subscribe(context.Background(), "user-1", req)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeliver_SendsToAllSubscriptions(t *testing.T) {
	repo := &MockSubscriptionRepository{}
	sender := &MockSender{}
	svc := NewPushService(repo, sender, slog.New(slog.DiscardHandler))

	subs := []*models.PushSubscription{
		{Endpoint: "https://push.example/a", UserUID: "user-1"},
		{Endpoint: "https://push.example/b", UserUID: "user-1"},
	}
	repo.On("ListPushSubscriptions", mock.Anything, "user-1").Return(subs, nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(p webpush.Payload) bool {
		return p.Title == "⚠️ 3 days left on your StreamCo trial" &&
			p.Tag == "trial-trial-id-1-3d"
	})).Return(nil)

	err := svc.Deliver(context.Background(), event())
	require.NoError(t, err)
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestDeliver_PrunesExpiredSubscription(t *testing.T) {
	repo := &MockSubscriptionRepository{}
	sender := &MockSender{}
	svc := NewPushService(repo, sender, slog.New(slog.DiscardHandler))

	expired := &models.PushSubscription{Endpoint: "https://push.example/gone", UserUID: "user-1"}
	alive := &models.PushSubscription{Endpoint: "https://push.example/ok", UserUID: "user-1"}

	repo.On("ListPushSubscriptions", mock.Anything, "user-1").
		Return([]*models.PushSubscription{expired, alive}, nil)
	sender.On("Send", expired, mock.Anything).Return(webpush.ErrExpired)
	sender.On("Send", alive, mock.Anything).Return(nil)
	repo.On("RemovePushSubscription", mock.Anything, "https://push.example/gone").Return(1, nil)

	err := svc.Deliver(context.Background(), event())
	require.NoError(t, err)
	repo.AssertCalled(t, "RemovePushSubscription", mock.Anything, "https://push.example/gone")
	repo.AssertNotCalled(t, "RemovePushSubscription", mock.Anything, "https://push.example/ok")
}

func TestDeliver_SendErrorDoesNotFail(t *testing.T) {
	repo := &MockSubscriptionRepository{}
	sender := &MockSender{}
	svc := NewPushService(repo, sender, slog.New(slog.DiscardHandler))

	repo.On("ListPushSubscriptions", mock.Anything, "user-1").
		Return([]*models.PushSubscription{{Endpoint: "https://push.example/a"}}, nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("push service returned 502"))

	err := svc.Deliver(context.Background(), event())
	assert.NoError(t, err)
}

func TestDeliver_NoSubscriptions(t *testing.T) {
	repo := &MockSubscriptionRepository{}
	sender := &MockSender{}
	svc := NewPushService(repo, sender, slog.New(slog.DiscardHandler))

	repo.On("ListPushSubscriptions", mock.Anything, "user-1").
		Return([]*models.PushSubscription{}, nil)

	err := svc.Deliver(context.Background(), event())
	require.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
