package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"member_gate/internal/config"
	"member_gate/internal/middleware"
	"member_gate/internal/model"
	"member_gate/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountService は認証済みユーザー自身のアカウントに対する操作を提供する。
type AccountService interface {
	GetMe(ctx context.Context, accountID uuid.UUID) (*model.MeResponse, error)
	ResendVerification(ctx context.Context, accountID uuid.UUID) error
}

type accountService struct {
	db          *gorm.DB
	accountRepo repository.AccountRepository
	sendRepo    repository.VerificationSendRepository
	identity    IdentityProvider
	mailer      Mailer
	cfg         *config.Config
}

func NewAccountService(db *gorm.DB, accountRepo repository.AccountRepository, sendRepo repository.VerificationSendRepository, identity IdentityProvider, mailer Mailer, cfg *config.Config) AccountService {
	return &accountService{
		db:          db,
		accountRepo: accountRepo,
		sendRepo:    sendRepo,
		identity:    identity,
		mailer:      mailer,
		cfg:         cfg,
	}
}

// GetMe はアカウント本体と、そこから導出したアクセス状態をまとめて返す。
// 状態はDBに保存せず毎回導出する。保存列と導出結果がずれる余地をなくすため。
func (s *accountService) GetMe(ctx context.Context, accountID uuid.UUID) (*model.MeResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, s.db, accountID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("ACCOUNT_NOT_FOUND", "アカウントが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの取得に失敗しました。", "", err)
	}

	return &model.MeResponse{
		User: model.AccountResponse{
			ID:                 account.ID,
			Email:              account.Email,
			SubscriptionStatus: account.SubscriptionStatus,
			EmailVerifiedAt:    account.EmailVerifiedAt,
			PaymentCustomerRef: account.PaymentCustomerRef,
		},
		State: model.DeriveState(account),
	}, nil
}

// ResendVerification は確認メールを再送する。確認済みなら再送しない。
// 送信回数は直近1時間のローリングウィンドウで制限する。
func (s *accountService) ResendVerification(ctx context.Context, accountID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("account_id", accountID)

	account, err := s.accountRepo.FindByID(ctx, s.db, accountID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("ACCOUNT_NOT_FOUND", "アカウントが見つかりません。", "", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの取得に失敗しました。", "", err)
	}

	if account.EmailVerifiedAt != nil {
		return model.NewAppError("ALREADY_VERIFIED", "メールアドレスは既に確認済みです。", "", model.ErrInvalidInput)
	}

	count, err := s.sendRepo.CountSince(ctx, s.db, accountID, time.Now().Add(-config.ResendWindow))
	if err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "送信履歴の取得に失敗しました。", "", err)
	}
	if count >= config.ResendLimitPerWindow {
		logger.Warn("Verification resend rate limit hit", "count", count)
		return model.NewAppError("RATE_LIMITED", "確認メールの送信回数が上限に達しました。しばらくしてから再度お試しください。", "", model.ErrRateLimited)
	}

	link, err := s.identity.GenerateVerificationLink(ctx, account.Email)
	if err != nil {
		return model.NewAppError("UPSTREAM_FAILURE", "確認メールの発行に失敗しました。時間をおいて再度お試しください。", "", model.ErrUpstream)
	}

	subject := fmt.Sprintf("【%s】メールアドレスの確認", s.cfg.App.Name)
	body := fmt.Sprintf("メールアドレスを確認するには、以下のリンクをクリックしてください:\n%s", link)
	if err := s.mailer.Send(ctx, account.Email, subject, body); err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "確認メールの送信に失敗しました。", "", err)
	}

	if err := s.sendRepo.Record(ctx, s.db, &model.VerificationSend{
		AccountID: accountID,
		SentAt:    time.Now(),
	}); err != nil {
		// 送信自体は完了している。履歴の記録失敗でユーザーにエラーを返さない
		logger.Error("Failed to record verification send", "error", err)
	}

	logger.Info("Verification email resent")
	return nil
}
