package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"member_gate/internal/middleware"
	"member_gate/internal/model"

	"gorm.io/gorm"
)

// RecoveryTokenRepository はリカバリートークン行へのアクセスを抽象化する。
// トークンは削除せず、MarkUsed による論理的な無効化のみを行う(追記専用)。
type RecoveryTokenRepository interface {
	Create(ctx context.Context, db *gorm.DB, token *model.RecoveryToken) error
	Find(ctx context.Context, db *gorm.DB, token string) (*model.RecoveryToken, error)
	MarkUsed(ctx context.Context, db *gorm.DB, token string, usedAt time.Time) error
}

type gormRecoveryTokenRepository struct{}

func NewGormRecoveryTokenRepository() RecoveryTokenRepository {
	return &gormRecoveryTokenRepository{}
}

func (r *gormRecoveryTokenRepository) Create(ctx context.Context, db *gorm.DB, token *model.RecoveryToken) error {
	logger := middleware.GetLogger(ctx)
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		logger.Error("Failed to create recovery token", "error", err)
		return fmt.Errorf("gormRecoveryTokenRepository.Create: %w", err)
	}
	return nil
}

func (r *gormRecoveryTokenRepository) Find(ctx context.Context, db *gorm.DB, tokenStr string) (*model.RecoveryToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.RecoveryToken
	if err := db.WithContext(ctx).Where("token = ?", tokenStr).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find recovery token", "error", err)
		return nil, fmt.Errorf("gormRecoveryTokenRepository.Find: %w", err)
	}
	return &token, nil
}

// MarkUsed は used を false→true に遷移させる。WHERE句の used = false ガードにより
// 遷移はちょうど一度しか成功しない(単回使用の最終防衛線)。既に使用済みなら ErrConflict。
func (r *gormRecoveryTokenRepository) MarkUsed(ctx context.Context, db *gorm.DB, tokenStr string, usedAt time.Time) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.RecoveryToken{}).
		Where("token = ? AND used = ?", tokenStr, false).
		Updates(map[string]interface{}{"used": true, "used_at": usedAt})
	if result.Error != nil {
		logger.Error("Failed to mark recovery token used", "error", result.Error)
		return fmt.Errorf("gormRecoveryTokenRepository.MarkUsed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrConflict
	}
	return nil
}
