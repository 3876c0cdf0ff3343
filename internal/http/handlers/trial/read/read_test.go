package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/TechHookDev/trialwatch/internal/http/middlewarectx"
	"github.com/TechHookDev/trialwatch/internal/models"
	"github.com/TechHookDev/trialwatch/internal/storage/repository"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, id, userUID string) (*models.Trial, error) {
	args := m.Called(ctx, id, userUID)
	result, _ := args.Get(0).(*models.Trial)
	return result, args.Error(1)
}

const trialID = "6f1dcf44-9a3e-4c5f-9a77-0b2a6c1d2e3f"

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	endDate := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		id             string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное чтение",
			id:      trialID,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, trialID, "user-1").Return(&models.Trial{
					ID:      trialID,
					UserUID: "user-1",
					Name:    "StreamCo",
					EndDate: endDate,
					Status:  models.TrialStatusActive,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Name":"StreamCo"`,
		},
		{
			name:           "некорректный id в URL",
			id:             "abc",
			userUID:        "user-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name:           "нет пользователя в контексте",
			id:             trialID,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:    "пробный период не найден",
			id:      trialID,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, trialID, "user-1").
					Return(nil, repository.ErrTrialNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `trial not found`,
		},
		{
			name:    "ошибка сервиса",
			id:      trialID,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, trialID, "user-1").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not read trial`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/trials/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
