package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"member_gate/internal/config"
	"member_gate/internal/middleware"
	"member_gate/internal/model"
	"member_gate/internal/repository"

	"gorm.io/gorm"
)

// RecoveryService はパスワード再設定のトークンライフサイクル
// (requested → verified → redeemed) を管理する。
type RecoveryService interface {
	Request(ctx context.Context, email string) error
	VerifyToken(ctx context.Context, token string) (*model.RecoveryTokenInfo, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type recoveryService struct {
	db          *gorm.DB
	accountRepo repository.AccountRepository
	tokenRepo   repository.RecoveryTokenRepository
	identity    IdentityProvider
	mailer      Mailer
	cfg         *config.Config
}

func NewRecoveryService(db *gorm.DB, accountRepo repository.AccountRepository, tokenRepo repository.RecoveryTokenRepository, identity IdentityProvider, mailer Mailer, cfg *config.Config) RecoveryService {
	return &recoveryService{
		db:          db,
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		identity:    identity,
		mailer:      mailer,
		cfg:         cfg,
	}
}

// Request はリカバリートークンを発行し、再設定リンクをメールで送る。
// メールアドレスの存在有無を外から観測できないよう、どの経路でも成功として扱う。
// 既存トークンの更新はせず毎回新しいトークンを発行するため、同一アカウントに
// 複数の有効なトークンが同時に存在しうる(それぞれ独立に使用・失効する)。
func (s *recoveryService) Request(ctx context.Context, email string) error {
	logger := middleware.GetLogger(ctx).With("email", email)

	account, err := s.accountRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// ユーザーが存在しない場合でも、それを悟られないように成功として扱う
			logger.Warn("Password recovery requested for non-existent email")
			return nil
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	tokenString, err := s.generateToken()
	if err != nil {
		logger.Error("Failed to generate random bytes for token", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	recoveryToken := &model.RecoveryToken{
		Token:     tokenString,
		AccountID: account.ID,
		Email:     account.Email, // 発行時点のメールアドレスをスナップショット
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Create(ctx, s.db, recoveryToken); err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの保存に失敗しました。", "", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.App.FrontendURL, tokenString)
	subject := fmt.Sprintf("【%s】パスワードの再設定", s.cfg.App.Name)
	body := fmt.Sprintf("パスワードを再設定するには、以下のリンクをクリックしてください:\n%s\n\nこのリンクの有効期限は24時間です。", resetURL)

	if err := s.mailer.Send(ctx, account.Email, subject, body); err != nil {
		// 送信失敗もアカウントの存在を漏らさないため成功として返す。運用向けにログだけ残す
		logger.Error("Failed to send recovery email", "error", err)
		return nil
	}

	logger.Info("Password recovery email sent")
	return nil
}

// VerifyToken はトークンを検証し、発行時のメールアドレスと所有アカウントIDを返す。
// 状態は一切変更しない(UIのページ表示と送信時の二重チェックなど、何度呼んでもよい)。
func (s *recoveryService) VerifyToken(ctx context.Context, tokenString string) (*model.RecoveryTokenInfo, error) {
	token, err := s.validateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &model.RecoveryTokenInfo{
		Email:     token.Email,
		AccountID: token.AccountID,
	}, nil
}

// ResetPassword はトークンを償還して新しいパスワードを設定する。
// トークンの used 化はIDプロバイダへのパスワード設定が成功したときだけ行う。
// used 化の書き込みに失敗してもリクエストは成功とする: トークンは有効なまま残るが、
// 再度償還されても同じパスワードを設定し直すだけなので、24時間の窓の中では許容できる残余リスク。
func (s *recoveryService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	logger := middleware.GetLogger(ctx)

	token, err := s.validateToken(ctx, tokenString)
	if err != nil {
		return err
	}

	if len(newPassword) < config.MinPasswordLength {
		return model.NewAppError("VALIDATION_ERROR",
			fmt.Sprintf("パスワードは%d文字以上で入力してください。", config.MinPasswordLength),
			"password", model.ErrInvalidInput)
	}

	if err := s.identity.SetPassword(ctx, token.AccountID, newPassword); err != nil {
		logger.Error("Failed to set new password via identity provider", "error", err, "account_id", token.AccountID)
		return model.NewAppError("UPSTREAM_FAILURE", "パスワードの更新に失敗しました。時間をおいて再度お試しください。", "", model.ErrUpstream)
	}

	if err := s.tokenRepo.MarkUsed(ctx, s.db, tokenString, time.Now()); err != nil {
		// パスワード自体は更新済み。トークンの無効化失敗は致命的ではないので処理は続行する
		logger.Error("Failed to mark recovery token used", "error", err)
	}

	logger.Info("Password reset successfully", "account_id", token.AccountID)
	return nil
}

// validateToken は Verify / ResetPassword 共通のトークン検証。
// 見つからない → INVALID_TOKEN、使用済み → TOKEN_ALREADY_USED、期限切れ → EXPIRED_TOKEN。
func (s *recoveryService) validateToken(ctx context.Context, tokenString string) (*model.RecoveryToken, error) {
	logger := middleware.GetLogger(ctx)

	token, err := s.tokenRepo.Find(ctx, s.db, tokenString)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Recovery token not found")
			return nil, model.NewAppError("INVALID_TOKEN", "このリンクは無効です。", "token", model.ErrInvalidInput)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "エラーが発生しました。", "", err)
	}

	if token.Used {
		logger.Warn("Recovery token already used", "used_at", token.UsedAt)
		return nil, model.NewAppError("TOKEN_ALREADY_USED", "このリンクは既に使用されています。", "token", model.ErrInvalidInput)
	}

	if time.Now().After(token.ExpiresAt()) {
		logger.Warn("Recovery token expired", "expires_at", token.ExpiresAt())
		return nil, model.NewAppError("EXPIRED_TOKEN", "このリンクの有効期限が切れています。", "token", model.ErrInvalidInput)
	}

	return token, nil
}

func (s *recoveryService) generateToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}
