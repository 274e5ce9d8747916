package model

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryTokenTTL はリカバリートークンの有効期間(固定・設定不可)
const RecoveryTokenTTL = 24 * time.Hour

// RecoveryToken はパスワード再設定用の単回使用トークン。
// 使用済み・期限切れでも物理削除せず、used/used_at で論理的に無効化する(追記専用)。
// Emailは発行時点のスナップショット。償還時にAccountから読み直さないことで、
// 発行後にアドレスが変わったアカウントへの償還を防ぐ。
type RecoveryToken struct {
	Token     string     `gorm:"primaryKey"`
	AccountID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Email     string     `gorm:"not null"`
	CreatedAt time.Time  `gorm:"not null"`
	Used      bool       `gorm:"not null;default:false"`
	UsedAt    *time.Time `gorm:"default:null"`
}

func (RecoveryToken) TableName() string {
	return "recovery_tokens"
}

// ExpiresAt はトークンの失効時刻を返す
func (t *RecoveryToken) ExpiresAt() time.Time {
	return t.CreatedAt.Add(RecoveryTokenTTL)
}

// Redeemable は now 時点でトークンが償還可能かどうか。
// 条件: 未使用 かつ 発行から24時間以内。
func (t *RecoveryToken) Redeemable(now time.Time) bool {
	return !t.Used && !now.After(t.ExpiresAt())
}
