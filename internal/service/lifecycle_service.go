package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"member_gate/internal/middleware"
	"member_gate/internal/model"
	"member_gate/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LifecycleService はアカウントのライフサイクル状態遷移を一手に引き受ける。
// トリガーは2系統(IDプロバイダのメール確認通知・決済プロバイダのWebhook)で、
// 到着順序は保証されず、同一イベントの重複配送もありうる。
// すべての更新を冪等な「セット」にすることで、重複配送と順序逆転の両方に耐える。
type LifecycleService interface {
	EnsureAccount(ctx context.Context, accountID uuid.UUID, email string) error
	MarkEmailVerified(ctx context.Context, accountID uuid.UUID, verifiedAt time.Time) error
	ApplyPaymentEvent(ctx context.Context, ev *model.PaymentEvent) error
}

type lifecycleService struct {
	db          *gorm.DB
	accountRepo repository.AccountRepository
	payments    PaymentProvider
}

func NewLifecycleService(db *gorm.DB, accountRepo repository.AccountRepository, payments PaymentProvider) LifecycleService {
	return &lifecycleService{
		db:          db,
		accountRepo: accountRepo,
		payments:    payments,
	}
}

// EnsureAccount はIDプロバイダのサインアップ通知からアカウント行を作成する。
// 通知は重複配送されうるため、既存行があれば何もしない(冪等なupsert)。
func (s *lifecycleService) EnsureAccount(ctx context.Context, accountID uuid.UUID, email string) error {
	logger := middleware.GetLogger(ctx)

	account := &model.Account{
		ID:                 accountID,
		Email:              email,
		SubscriptionStatus: model.StatusPendingEmail,
	}
	if err := s.accountRepo.Upsert(ctx, s.db, account); err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの作成に失敗しました。", "", err)
	}

	logger.Info("Account ensured", "account_id", accountID)
	return nil
}

// MarkEmailVerified はトリガーA(メール確認完了)を適用する。
// email_verified_at が未設定なら設定し、状態が pending_email なら pending_subscription へ進める。
// 既に active まで進んだアカウントを巻き戻すことはない。2回適用しても結果は同じ。
func (s *lifecycleService) MarkEmailVerified(ctx context.Context, accountID uuid.UUID, verifiedAt time.Time) error {
	logger := middleware.GetLogger(ctx).With("account_id", accountID)

	account, err := s.accountRepo.FindByID(ctx, s.db, accountID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// 恒久的に存在しないアカウントへの無限再配送を避けるため、読み捨てる
			logger.Warn("Email verification event for unknown account, dropping")
			return nil
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの取得に失敗しました。", "", err)
	}

	fields := map[string]interface{}{}
	if account.EmailVerifiedAt == nil {
		fields["email_verified_at"] = verifiedAt
	}
	if account.SubscriptionStatus == model.StatusPendingEmail {
		fields["subscription_status"] = model.StatusPendingSubscription
	}
	if len(fields) == 0 {
		logger.Info("Email verification already applied, nothing to do")
		return nil
	}

	if err := s.applyUpdate(ctx, logger, account.ID, fields); err != nil {
		return err
	}

	logger.Info("Email verification applied")
	return nil
}

// ApplyPaymentEvent はトリガーB(決済プロバイダのWebhookイベント)を適用する。
// イベント種別を横断する単調な順序番号は存在しないため、更新は受信順の last-writer-wins。
// アカウントを解決できないイベントはログを出して読み捨てる(nilを返す)。エラーを返すのは
// ストアやプロバイダ呼び出しが失敗したときだけで、その場合は呼び出し元が5xxを返して
// 送信側の再配送に委ねる。
func (s *lifecycleService) ApplyPaymentEvent(ctx context.Context, ev *model.PaymentEvent) error {
	logger := middleware.GetLogger(ctx).With("event_kind", string(ev.Kind))

	switch ev.Kind {
	case model.PaymentEventCheckoutCompleted:
		return s.applyCheckoutCompleted(ctx, ev)

	case model.PaymentEventSubscriptionCreated:
		account, err := s.resolve(ctx, logger, s.byCustomerRef(ev.CustomerRef), s.bySubscriptionRef(ev.SubscriptionRef))
		if err != nil || account == nil {
			return err
		}
		status, ok := model.MapProviderStatus(ev.ProviderStatus)
		if !ok {
			logger.Warn("Unmapped provider status, dropping event", "provider_status", ev.ProviderStatus)
			return nil
		}
		fields := map[string]interface{}{"subscription_status": status}
		if ev.SubscriptionRef != "" {
			fields["payment_subscription_ref"] = ev.SubscriptionRef
		}
		return s.applyUpdate(ctx, logger, account.ID, fields)

	case model.PaymentEventSubscriptionUpdated:
		account, err := s.resolve(ctx, logger, s.bySubscriptionRef(ev.SubscriptionRef), s.byCustomerRef(ev.CustomerRef))
		if err != nil || account == nil {
			return err
		}
		status, ok := model.MapProviderStatus(ev.ProviderStatus)
		if !ok {
			logger.Warn("Unmapped provider status, dropping event", "provider_status", ev.ProviderStatus)
			return nil
		}
		return s.applyUpdate(ctx, logger, account.ID, map[string]interface{}{"subscription_status": status})

	case model.PaymentEventSubscriptionDeleted:
		account, err := s.resolve(ctx, logger, s.bySubscriptionRef(ev.SubscriptionRef))
		if err != nil || account == nil {
			return err
		}
		return s.applyUpdate(ctx, logger, account.ID, map[string]interface{}{"subscription_status": model.StatusCanceled})

	case model.PaymentEventInvoiceSucceeded:
		account, err := s.resolve(ctx, logger, s.bySubscriptionRef(ev.SubscriptionRef))
		if err != nil || account == nil {
			return err
		}
		return s.applyUpdate(ctx, logger, account.ID, map[string]interface{}{"subscription_status": model.StatusActive})

	case model.PaymentEventInvoiceFailed:
		account, err := s.resolve(ctx, logger, s.bySubscriptionRef(ev.SubscriptionRef))
		if err != nil || account == nil {
			return err
		}
		return s.applyUpdate(ctx, logger, account.ID, map[string]interface{}{"subscription_status": model.StatusPastDue})

	default:
		// 未知のイベント種別は前方互換のため読み捨てる
		logger.Info("Unhandled payment event kind, dropping")
		return nil
	}
}

// applyCheckoutCompleted はチェックアウト完了イベントを適用する。
// アカウントはメール(第一)か既存の顧客IDで解決する。顧客がまだ作られていなければ
// プロバイダ側に作成して参照を永続化する。
func (s *lifecycleService) applyCheckoutCompleted(ctx context.Context, ev *model.PaymentEvent) error {
	logger := middleware.GetLogger(ctx).With("event_kind", string(ev.Kind))

	account, err := s.resolve(ctx, logger, s.byEmail(ev.Email), s.byCustomerRef(ev.CustomerRef))
	if err != nil || account == nil {
		return err
	}

	customerRef := ev.CustomerRef
	if customerRef == "" {
		if account.PaymentCustomerRef != nil {
			customerRef = *account.PaymentCustomerRef
		} else {
			customerRef, err = s.payments.CreateCustomer(ctx, account.Email)
			if err != nil {
				return model.NewAppError("UPSTREAM_FAILURE", "決済プロバイダの呼び出しに失敗しました。", "", model.ErrUpstream)
			}
		}
	}

	fields := map[string]interface{}{
		"subscription_status":  model.StatusActive,
		"payment_customer_ref": customerRef,
	}
	if ev.SubscriptionRef != "" {
		fields["payment_subscription_ref"] = ev.SubscriptionRef
	}
	return s.applyUpdate(ctx, logger, account.ID, fields)
}

// --- 解決ヘルパー ---

type accountLookup func(ctx context.Context) (*model.Account, error)

func (s *lifecycleService) byEmail(email string) accountLookup {
	return func(ctx context.Context) (*model.Account, error) {
		if email == "" {
			return nil, model.ErrNotFound
		}
		return s.accountRepo.FindByEmail(ctx, s.db, email)
	}
}

func (s *lifecycleService) byCustomerRef(customerRef string) accountLookup {
	return func(ctx context.Context) (*model.Account, error) {
		if customerRef == "" {
			return nil, model.ErrNotFound
		}
		return s.accountRepo.FindByCustomerRef(ctx, s.db, customerRef)
	}
}

func (s *lifecycleService) bySubscriptionRef(subscriptionRef string) accountLookup {
	return func(ctx context.Context) (*model.Account, error) {
		if subscriptionRef == "" {
			return nil, model.ErrNotFound
		}
		return s.accountRepo.FindBySubscriptionRef(ctx, s.db, subscriptionRef)
	}
}

// resolve は与えられた検索キーを順に試してアカウントを解決する。
// どのキーでも見つからない場合は (nil, nil) を返し、呼び出し側はイベントを読み捨てる。
func (s *lifecycleService) resolve(ctx context.Context, logger *slog.Logger, lookups ...accountLookup) (*model.Account, error) {
	for _, lookup := range lookups {
		account, err := lookup(ctx)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの取得に失敗しました。", "", err)
		}
	}
	logger.Warn("Could not resolve account for payment event, dropping")
	return nil, nil
}

func (s *lifecycleService) applyUpdate(ctx context.Context, logger *slog.Logger, accountID uuid.UUID, fields map[string]interface{}) error {
	err := s.accountRepo.Update(ctx, s.db, accountID, fields)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// 解決と更新の間に行が消えた場合。再配送されても直らないので読み捨てる
			logger.Warn("Account disappeared before update, dropping")
			return nil
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの更新に失敗しました。", "", err)
	}
	return nil
}
