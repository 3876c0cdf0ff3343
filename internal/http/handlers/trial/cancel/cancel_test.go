package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/TechHookDev/trialwatch/internal/http/middlewarectx"
)

// MockService реализует интерфейс cancel.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Cancel(ctx context.Context, id, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

const trialID = "6f1dcf44-9a3e-4c5f-9a77-0b2a6c1d2e3f"

func TestCancelHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name           string
		id             string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная отмена",
			id:      trialID,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, trialID, "user-1").Return(1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"cancelled":1`,
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
			name:    "пробный период не найден",
			id:      trialID,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, trialID, "user-1").Return(0, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `trial not found`,
		},
		{
			name:    "ошибка сервиса",
			id:      trialID,
			userUID: "user-1",
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, trialID, "user-1").
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not cancel trial`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/trials/"+tt.id+"/cancel", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
