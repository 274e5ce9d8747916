package repository

import (
	"context"
	"errors"
	"fmt"

	"member_gate/internal/middleware"
	"member_gate/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository はアカウント行へのアクセスを抽象化する。
// Webhook起点の更新は呼び出し元ユーザーの所有権チェックを通らないため、
// 検索キー(email/顧客ID/サブスクリプションID)ごとのメソッドを分けて持つ。
type AccountRepository interface {
	Upsert(ctx context.Context, db *gorm.DB, account *model.Account) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.Account, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.Account, error)
	FindByCustomerRef(ctx context.Context, db *gorm.DB, customerRef string) (*model.Account, error)
	FindBySubscriptionRef(ctx context.Context, db *gorm.DB, subscriptionRef string) (*model.Account, error)
	Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
}

type gormAccountRepository struct{}

func NewGormAccountRepository() AccountRepository {
	return &gormAccountRepository{}
}

// Upsert はアカウント行を作成する。同じIDの行が既にあれば何もしない(冪等)。
// IDプロバイダのサインアップ通知は重複配送されうるため、作成は必ずこの経路を通す。
func (r *gormAccountRepository) Upsert(ctx context.Context, db *gorm.DB, account *model.Account) error {
	logger := middleware.GetLogger(ctx)
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(account).Error
	if err != nil {
		logger.Error("Failed to upsert account", "error", err, "account_id", account.ID)
		return fmt.Errorf("gormAccountRepository.Upsert: %w", err)
	}
	return nil
}

func (r *gormAccountRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.Account, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *gormAccountRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.Account, error) {
	return r.findOne(ctx, db, "email = ?", email)
}

func (r *gormAccountRepository) FindByCustomerRef(ctx context.Context, db *gorm.DB, customerRef string) (*model.Account, error) {
	return r.findOne(ctx, db, "payment_customer_ref = ?", customerRef)
}

func (r *gormAccountRepository) FindBySubscriptionRef(ctx context.Context, db *gorm.DB, subscriptionRef string) (*model.Account, error) {
	return r.findOne(ctx, db, "payment_subscription_ref = ?", subscriptionRef)
}

func (r *gormAccountRepository) findOne(ctx context.Context, db *gorm.DB, query string, arg interface{}) (*model.Account, error) {
	logger := middleware.GetLogger(ctx)
	var account model.Account
	if err := db.WithContext(ctx).Where(query, arg).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find account", "error", err, "query", query)
		return nil, fmt.Errorf("gormAccountRepository.findOne: %w", err)
	}
	return &account, nil
}

// Update は対象行だけへの単一のUPDATE文を発行する。
// 部分書き込みが起きないことはストア側のアトミックな行更新が保証する。
// updated_at はGORMが自動で現在時刻に更新する(last-writer-wins のタイブレーク)。
func (r *gormAccountRepository) Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update account", "error", result.Error, "account_id", id)
		return fmt.Errorf("gormAccountRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
