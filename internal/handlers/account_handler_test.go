package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"member_gate/internal/config"
	"member_gate/internal/handlers"
	"member_gate/internal/middleware"
	"member_gate/internal/model"
	"member_gate/internal/service/mocks"
)

const testJWTSecret = "test-secret"

// signTestToken はテスト用に subject を指定したHS256 JWTを発行する
func signTestToken(t *testing.T, accountID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": accountID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func setupAccountRouter(mockService *mocks.AccountService) *chi.Mux {
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: testJWTSecret}}
	handler := handlers.NewAccountHandler(mockService)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuthMiddleware(cfg))
		r.Get("/me", handler.GetMe)
		r.Post("/resend-verification", handler.ResendVerification)
	})
	return router
}

func TestAccountHandler_GetMe(t *testing.T) {
	accountID := uuid.New()
	verifiedAt := time.Now().Add(-time.Hour)

	tests := []struct {
		name           string
		authHeader     func(t *testing.T) string
		setupMock      func(m *mocks.AccountService)
		expectedStatus int
		checkBody      func(t *testing.T, body []byte)
	}{
		{
			name:       "Success - アカウントと導出状態が返る",
			authHeader: func(t *testing.T) string { return "Bearer " + signTestToken(t, accountID) },
			setupMock: func(m *mocks.AccountService) {
				m.On("GetMe", mock.Anything, accountID).Return(&model.MeResponse{
					User: model.AccountResponse{
						ID:                 accountID,
						Email:              "user@example.com",
						SubscriptionStatus: model.StatusActive,
						EmailVerifiedAt:    &verifiedAt,
					},
					State: model.AccountState{
						Status:             model.StatusActive,
						CanAccessDashboard: true,
					},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body []byte) {
				var resp model.MeResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, accountID, resp.User.ID)
				assert.True(t, resp.State.CanAccessDashboard)
			},
		},
		{
			name:           "Fail - トークンなしは401",
			authHeader:     func(t *testing.T) string { return "" },
			setupMock:      func(m *mocks.AccountService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Fail - 署名が不正なトークンは401",
			authHeader: func(t *testing.T) string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"sub": accountID.String(),
					"exp": time.Now().Add(time.Hour).Unix(),
				})
				signed, err := token.SignedString([]byte("wrong-secret"))
				require.NoError(t, err)
				return "Bearer " + signed
			},
			setupMock:      func(m *mocks.AccountService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "Fail - アカウントが見つからない場合は404",
			authHeader: func(t *testing.T) string { return "Bearer " + signTestToken(t, accountID) },
			setupMock: func(m *mocks.AccountService) {
				m.On("GetMe", mock.Anything, accountID).
					Return(nil, model.NewAppError("ACCOUNT_NOT_FOUND", "アカウントが見つかりません。", "", model.ErrNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(mocks.AccountService)
			tc.setupMock(mockService)
			router := setupAccountRouter(mockService)

			req := httptest.NewRequest("GET", "/me", nil)
			if header := tc.authHeader(t); header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.Bytes())
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_ResendVerification(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name           string
		setupMock      func(m *mocks.AccountService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success - 再送できる",
			setupMock: func(m *mocks.AccountService) {
				m.On("ResendVerification", mock.Anything, accountID).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Fail - 確認済みなら400",
			setupMock: func(m *mocks.AccountService) {
				m.On("ResendVerification", mock.Anything, accountID).
					Return(model.NewAppError("ALREADY_VERIFIED", "メールアドレスは既に確認済みです。", "", model.ErrInvalidInput)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "ALREADY_VERIFIED",
		},
		{
			name: "Fail - 送信回数の上限に達したら429",
			setupMock: func(m *mocks.AccountService) {
				m.On("ResendVerification", mock.Anything, accountID).
					Return(model.NewAppError("RATE_LIMITED", "確認メールの送信回数が上限に達しました。", "", model.ErrRateLimited)).Once()
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   "RATE_LIMITED",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(mocks.AccountService)
			tc.setupMock(mockService)
			router := setupAccountRouter(mockService)

			req := httptest.NewRequest("POST", "/resend-verification", nil)
			req.Header.Set("Authorization", "Bearer "+signTestToken(t, accountID))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedCode != "" {
				var errResp model.APIErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
				assert.Equal(t, tc.expectedCode, errResp.Error.Code)
			}
			mockService.AssertExpectations(t)
		})
	}
}
