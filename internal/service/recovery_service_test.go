package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"member_gate/internal/config"
	"member_gate/internal/model"
	"member_gate/internal/repository/mocks"
	"member_gate/internal/service"
	servicemocks "member_gate/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RecoveryServiceTestSuite struct {
	suite.Suite

	mockAccountRepo *mocks.AccountRepository
	mockTokenRepo   *mocks.RecoveryTokenRepository
	mockIdentity    *servicemocks.IdentityProvider
	mockMailer      *servicemocks.Mailer
	cfg             *config.Config
	service         service.RecoveryService
}

func (s *RecoveryServiceTestSuite) SetupTest() {
	s.mockAccountRepo = new(mocks.AccountRepository)
	s.mockTokenRepo = new(mocks.RecoveryTokenRepository)
	s.mockIdentity = new(servicemocks.IdentityProvider)
	s.mockMailer = new(servicemocks.Mailer)

	s.cfg = &config.Config{
		App: config.AppConfig{
			Name:        "MemberGate",
			FrontendURL: "http://localhost:3000",
		},
	}

	s.service = service.NewRecoveryService(nil, s.mockAccountRepo, s.mockTokenRepo, s.mockIdentity, s.mockMailer, s.cfg)
}

func TestRecoveryService(t *testing.T) {
	suite.Run(t, new(RecoveryServiceTestSuite))
}

func (s *RecoveryServiceTestSuite) TestRequest() {
	accountID := uuid.New()

	s.Run("正常系: トークンが保存され、再設定リンクがメールで送られる", func() {
		s.SetupTest()
		var issuedToken string
		s.mockAccountRepo.On("FindByEmail", mock.Anything, mock.Anything, "user@example.com").
			Return(&model.Account{ID: accountID, Email: "user@example.com"}, nil).Once()
		s.mockTokenRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(t *model.RecoveryToken) bool {
			issuedToken = t.Token
			return t.AccountID == accountID && t.Email == "user@example.com" && len(t.Token) == 64 && !t.Used
		})).Return(nil).Once()
		s.mockMailer.On("Send", mock.Anything, "user@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "http://localhost:3000/reset-password?token=")
		})).Return(nil).Once()

		err := s.service.Request(context.Background(), "user@example.com")

		s.NoError(err)
		s.NotEmpty(issuedToken)
		s.mockTokenRepo.AssertExpectations(s.T())
		s.mockMailer.AssertExpectations(s.T())
	})

	s.Run("存在しないメールアドレスでも成功として扱い、トークンは発行しない", func() {
		s.SetupTest()
		s.mockAccountRepo.On("FindByEmail", mock.Anything, mock.Anything, "nobody@example.com").
			Return(nil, model.ErrNotFound).Once()

		err := s.service.Request(context.Background(), "nobody@example.com")

		s.NoError(err)
		s.mockTokenRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
		s.mockMailer.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("メール送信の失敗も成功として返す(存在を漏らさない)", func() {
		s.SetupTest()
		s.mockAccountRepo.On("FindByEmail", mock.Anything, mock.Anything, "user@example.com").
			Return(&model.Account{ID: accountID, Email: "user@example.com"}, nil).Once()
		s.mockTokenRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		s.mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down")).Once()

		err := s.service.Request(context.Background(), "user@example.com")

		s.NoError(err)
	})

	s.Run("異常系: トークンの保存失敗はエラーとして返す", func() {
		s.SetupTest()
		s.mockAccountRepo.On("FindByEmail", mock.Anything, mock.Anything, "user@example.com").
			Return(&model.Account{ID: accountID, Email: "user@example.com"}, nil).Once()
		s.mockTokenRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("db down")).Once()

		err := s.service.Request(context.Background(), "user@example.com")

		s.Error(err)
		s.mockMailer.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func (s *RecoveryServiceTestSuite) TestVerifyToken() {
	accountID := uuid.New()
	usedAt := time.Now().Add(-time.Hour)

	testCases := []struct {
		name       string
		setupMocks func()
		checkResult func(info *model.RecoveryTokenInfo, err error)
	}{
		{
			name: "正常系: 発行時のメールアドレスと所有者IDを返す",
			setupMocks: func() {
				s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").
					Return(&model.RecoveryToken{
						Token:     "valid-token",
						AccountID: accountID,
						Email:     "user@example.com",
						CreatedAt: time.Now().Add(-time.Hour),
					}, nil).Once()
			},
			checkResult: func(info *model.RecoveryTokenInfo, err error) {
				s.NoError(err)
				s.Require().NotNil(info)
				s.Equal("user@example.com", info.Email)
				s.Equal(accountID, info.AccountID)
			},
		},
		{
			name: "存在しないトークンは INVALID_TOKEN",
			setupMocks: func() {
				s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").
					Return(nil, model.ErrNotFound).Once()
			},
			checkResult: func(info *model.RecoveryTokenInfo, err error) {
				s.Nil(info)
				var appErr *model.AppError
				s.ErrorAs(err, &appErr)
				s.Equal("INVALID_TOKEN", appErr.Detail.Code)
				s.ErrorIs(err, model.ErrInvalidInput)
			},
		},
		{
			name: "使用済みトークンは TOKEN_ALREADY_USED",
			setupMocks: func() {
				s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").
					Return(&model.RecoveryToken{
						Token:     "valid-token",
						AccountID: accountID,
						CreatedAt: time.Now().Add(-time.Hour),
						Used:      true,
						UsedAt:    &usedAt,
					}, nil).Once()
			},
			checkResult: func(info *model.RecoveryTokenInfo, err error) {
				s.Nil(info)
				var appErr *model.AppError
				s.ErrorAs(err, &appErr)
				s.Equal("TOKEN_ALREADY_USED", appErr.Detail.Code)
			},
		},
		{
			name: "発行から24時間を過ぎたトークンは EXPIRED_TOKEN",
			setupMocks: func() {
				s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").
					Return(&model.RecoveryToken{
						Token:     "valid-token",
						AccountID: accountID,
						CreatedAt: time.Now().Add(-model.RecoveryTokenTTL - time.Second),
					}, nil).Once()
			},
			checkResult: func(info *model.RecoveryTokenInfo, err error) {
				s.Nil(info)
				var appErr *model.AppError
				s.ErrorAs(err, &appErr)
				s.Equal("EXPIRED_TOKEN", appErr.Detail.Code)
			},
		},
		{
			name: "期限ぎりぎり(残り1分)のトークンはまだ有効",
			setupMocks: func() {
				s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").
					Return(&model.RecoveryToken{
						Token:     "valid-token",
						AccountID: accountID,
						Email:     "user@example.com",
						CreatedAt: time.Now().Add(-model.RecoveryTokenTTL + time.Minute),
					}, nil).Once()
			},
			checkResult: func(info *model.RecoveryTokenInfo, err error) {
				s.NoError(err)
				s.NotNil(info)
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setupMocks()

			info, err := s.service.VerifyToken(context.Background(), "valid-token")

			tc.checkResult(info, err)
			s.mockTokenRepo.AssertExpectations(s.T())
		})
	}
}

func (s *RecoveryServiceTestSuite) TestResetPassword() {
	accountID := uuid.New()
	freshToken := func() *model.RecoveryToken {
		return &model.RecoveryToken{
			Token:     "valid-token",
			AccountID: accountID,
			Email:     "user@example.com",
			CreatedAt: time.Now().Add(-time.Hour),
		}
	}

	s.Run("正常系: パスワードを設定してからトークンを使用済みにする", func() {
		s.SetupTest()
		s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").Return(freshToken(), nil).Once()
		s.mockIdentity.On("SetPassword", mock.Anything, accountID, "new-password").Return(nil).Once()
		s.mockTokenRepo.On("MarkUsed", mock.Anything, mock.Anything, "valid-token", mock.Anything).Return(nil).Once()

		err := s.service.ResetPassword(context.Background(), "valid-token", "new-password")

		s.NoError(err)
		s.mockIdentity.AssertExpectations(s.T())
		s.mockTokenRepo.AssertExpectations(s.T())
	})

	s.Run("短すぎるパスワードは VALIDATION_ERROR で、IDプロバイダは呼ばない", func() {
		s.SetupTest()
		s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").Return(freshToken(), nil).Once()

		err := s.service.ResetPassword(context.Background(), "valid-token", "abc")

		var appErr *model.AppError
		s.ErrorAs(err, &appErr)
		s.Equal("VALIDATION_ERROR", appErr.Detail.Code)
		s.mockIdentity.AssertNotCalled(s.T(), "SetPassword", mock.Anything, mock.Anything, mock.Anything)
		s.mockTokenRepo.AssertNotCalled(s.T(), "MarkUsed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("IDプロバイダの失敗は UPSTREAM_FAILURE で、トークンは未使用のまま残す", func() {
		s.SetupTest()
		s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").Return(freshToken(), nil).Once()
		s.mockIdentity.On("SetPassword", mock.Anything, accountID, "new-password").
			Return(errors.New("api error")).Once()

		err := s.service.ResetPassword(context.Background(), "valid-token", "new-password")

		var appErr *model.AppError
		s.ErrorAs(err, &appErr)
		s.Equal("UPSTREAM_FAILURE", appErr.Detail.Code)
		s.mockTokenRepo.AssertNotCalled(s.T(), "MarkUsed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("使用済みトークンでの再設定は TOKEN_ALREADY_USED", func() {
		s.SetupTest()
		token := freshToken()
		token.Used = true
		s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").Return(token, nil).Once()

		err := s.service.ResetPassword(context.Background(), "valid-token", "new-password")

		var appErr *model.AppError
		s.ErrorAs(err, &appErr)
		s.Equal("TOKEN_ALREADY_USED", appErr.Detail.Code)
		s.mockIdentity.AssertNotCalled(s.T(), "SetPassword", mock.Anything, mock.Anything, mock.Anything)
	})

	s.Run("used化の書き込み失敗でもパスワード設定済みなら成功として返す", func() {
		s.SetupTest()
		s.mockTokenRepo.On("Find", mock.Anything, mock.Anything, "valid-token").Return(freshToken(), nil).Once()
		s.mockIdentity.On("SetPassword", mock.Anything, accountID, "new-password").Return(nil).Once()
		s.mockTokenRepo.On("MarkUsed", mock.Anything, mock.Anything, "valid-token", mock.Anything).
			Return(model.ErrConflict).Once()

		err := s.service.ResetPassword(context.Background(), "valid-token", "new-password")

		s.NoError(err)
	})
}
