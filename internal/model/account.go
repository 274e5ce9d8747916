package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus はアカウントのサブスクリプション状態を表す列挙型
type SubscriptionStatus string

const (
	StatusPendingEmail        SubscriptionStatus = "pending_email"        // メール未確認
	StatusPendingSubscription SubscriptionStatus = "pending_subscription" // メール確認済み・未契約
	StatusActive              SubscriptionStatus = "active"               // 契約中
	StatusPastDue             SubscriptionStatus = "past_due"             // 支払い遅延
	StatusCanceled            SubscriptionStatus = "canceled"             // 解約済み
)

// Account は1ユーザー(IDプロバイダ発行のID)につき1行のアカウント情報
// IDはIDプロバイダが発行した不変の識別子をそのまま主キーにする
type Account struct {
	ID                     uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Email                  string             `gorm:"not null;index" json:"email"`
	EmailVerifiedAt        *time.Time         `json:"email_verified_at"`
	SubscriptionStatus     SubscriptionStatus `gorm:"type:varchar(30);not null;default:'pending_email'" json:"subscription_status"`
	PaymentCustomerRef     *string            `gorm:"type:varchar(191);index" json:"payment_customer_ref"`
	PaymentSubscriptionRef *string            `gorm:"type:varchar(191);index" json:"payment_subscription_ref"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountState は導出されたライフサイクル状態とアクセス可否
type AccountState struct {
	Status                 SubscriptionStatus `json:"status"`
	CanAccessDashboard     bool               `json:"canAccessDashboard"`
	NeedsEmailVerification bool               `json:"needsEmailVerification"`
	NeedsSubscription      bool               `json:"needsSubscription"`
}

// DeriveState は (メール確認状態, サブスクリプション状態) からライフサイクル状態を導出する純粋関数。
// 副作用・I/Oなし。保存された状態はWebhookで随時変わるため、読み取りのたびに必ず呼ぶこと。
// ゲートは三段構え: メール確認 → サブスクリプション → アクセス許可。
func DeriveState(a *Account) AccountState {
	if a.EmailVerifiedAt == nil {
		return AccountState{
			Status:                 StatusPendingEmail,
			NeedsEmailVerification: true,
		}
	}
	if a.SubscriptionStatus != StatusActive {
		// past_due / canceled もダッシュボードへのアクセスは不可
		return AccountState{
			Status:            StatusPendingSubscription,
			NeedsSubscription: true,
		}
	}
	return AccountState{
		Status:             StatusActive,
		CanAccessDashboard: true,
	}
}
