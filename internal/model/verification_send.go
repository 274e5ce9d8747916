package model

import (
	"time"

	"github.com/google/uuid"
)

// VerificationSend は確認メール送信の記録(1送信につき1行、追記専用)。
// 再送APIのレート制限(直近1時間あたりの送信回数)の判定に使う。
type VerificationSend struct {
	ID        uint      `gorm:"primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	SentAt    time.Time `gorm:"not null;index"`
}

func (VerificationSend) TableName() string {
	return "verification_sends"
}
