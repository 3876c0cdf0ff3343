package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/TechHookDev/trialwatch/internal/http/middlewarectx"
	"github.com/TechHookDev/trialwatch/internal/models"
	"github.com/TechHookDev/trialwatch/internal/services/trial"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userUID string, req models.DummyTrial) (string, error) {
	args := m.Called(ctx, userUID, req)
	return args.String(0), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name           string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное создание пробного периода",
			body:    `{"name":"StreamCo","trial_days":14,"start_date":"2026-08-30","monthly_cost":9.99,"service_url":"https://streamco.example"}`,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "user-1", mock.Anything).Return("trial-id-1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"trial-id-1"`,
		},
		{
			name:    "пробный период нулевой длительности",
			body:    `{"name":"DayPass","trial_days":0,"start_date":"2026-08-30"}`,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "user-1", mock.Anything).Return("trial-id-2", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"trial-id-2"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"name":`,
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "отсутствует обязательное поле",
			body:           `{"trial_days":14,"start_date":"2026-08-30"}`,
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Name is a required field`,
		},
		{
			name:           "нет пользователя в контексте",
			body:           `{"name":"StreamCo","trial_days":14,"start_date":"2026-08-30"}`,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:    "превышен лимит бесплатного тарифа",
			body:    `{"name":"StreamCo","trial_days":14,"start_date":"2026-08-30"}`,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "user-1", mock.Anything).
					Return("", trial.ErrFreeLimitReached)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `active trial limit reached`,
		},
		{
			name:    "ошибка сервиса",
			body:    `{"name":"StreamCo","trial_days":14,"start_date":"2026-08-30"}`,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "user-1", mock.Anything).
					Return("", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not create trial`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/trials", strings.NewReader(tt.body))
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
