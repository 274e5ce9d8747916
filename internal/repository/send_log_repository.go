package repository

import (
	"context"
	"fmt"
	"time"

	"member_gate/internal/middleware"
	"member_gate/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationSendRepository は確認メール送信ログへのアクセスを抽象化する。
// 再送APIのローリングウィンドウ判定(CountSince)と記録(Record)に使う。
type VerificationSendRepository interface {
	CountSince(ctx context.Context, db *gorm.DB, accountID uuid.UUID, since time.Time) (int64, error)
	Record(ctx context.Context, db *gorm.DB, send *model.VerificationSend) error
}

type gormVerificationSendRepository struct{}

func NewGormVerificationSendRepository() VerificationSendRepository {
	return &gormVerificationSendRepository{}
}

func (r *gormVerificationSendRepository) CountSince(ctx context.Context, db *gorm.DB, accountID uuid.UUID, since time.Time) (int64, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	err := db.WithContext(ctx).Model(&model.VerificationSend{}).
		Where("account_id = ? AND sent_at > ?", accountID, since).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count verification sends", "error", err, "account_id", accountID)
		return 0, fmt.Errorf("gormVerificationSendRepository.CountSince: %w", err)
	}
	return count, nil
}

func (r *gormVerificationSendRepository) Record(ctx context.Context, db *gorm.DB, send *model.VerificationSend) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(send).Error; err != nil {
		logger.Error("Failed to record verification send", "error", err, "account_id", send.AccountID)
		return fmt.Errorf("gormVerificationSendRepository.Record: %w", err)
	}
	return nil
}
