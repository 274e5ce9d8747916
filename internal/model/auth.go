package model

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const (
	// AccountIDKey は認証ミドルウェアがコンテキストに格納する呼び出し元アカウントIDのキー
	AccountIDKey ContextKey = "accountID"
)

// RecoveryRequestRequest はパスワード再設定の申請リクエストボディ (DTO)
type RecoveryRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyTokenRequest はリカバリートークン検証のリクエストボディ
type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ResetPasswordRequest はパスワード再設定の実行リクエストボディ
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RecoveryTokenInfo はトークン検証成功時に返す情報(検証は副作用なし・何度でも呼べる)
type RecoveryTokenInfo struct {
	Email     string    `json:"email"`
	AccountID uuid.UUID `json:"user_id"`
}

// VerifyTokenResponse は verify-token エンドポイントのレスポンス
type VerifyTokenResponse struct {
	Valid  bool         `json:"valid"`
	Email  string       `json:"email,omitempty"`
	UserID string       `json:"user_id,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// AccountResponse はクライアントに返すアカウント情報
type AccountResponse struct {
	ID                 uuid.UUID          `json:"id"`
	Email              string             `json:"email"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	EmailVerifiedAt    *time.Time         `json:"email_verified_at"`
	PaymentCustomerRef *string            `json:"payment_customer_ref"`
}

// MeResponse は GET /me のレスポンス(アカウント情報+導出済み状態)
type MeResponse struct {
	User  AccountResponse `json:"user"`
	State AccountState    `json:"state"`
}
