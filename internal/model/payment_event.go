package model

// PaymentEventKind は決済プロバイダのWebhookイベント種別(タグ付きバリアント)
type PaymentEventKind string

const (
	PaymentEventCheckoutCompleted   PaymentEventKind = "checkout.session.completed"
	PaymentEventSubscriptionCreated PaymentEventKind = "customer.subscription.created"
	PaymentEventSubscriptionUpdated PaymentEventKind = "customer.subscription.updated"
	PaymentEventSubscriptionDeleted PaymentEventKind = "customer.subscription.deleted"
	PaymentEventInvoiceSucceeded    PaymentEventKind = "invoice.payment_succeeded"
	PaymentEventInvoiceFailed       PaymentEventKind = "invoice.payment_failed"
)

// PaymentEvent はプロバイダ固有のペイロードから必要な項目だけを取り出した内部表現。
// ハンドラ(アダプタ)がプロバイダのイベント封筒をこの形に変換し、サービス層はこの型だけを扱う。
type PaymentEvent struct {
	Kind            PaymentEventKind
	CustomerRef     string // プロバイダ側の顧客ID
	SubscriptionRef string // プロバイダ側のサブスクリプションID
	Email           string // checkout completed のみ
	ProviderStatus  string // プロバイダが報告した生のステータス文字列
}

// providerStatusMap はプロバイダのステータス文字列から内部enumへの明示的な対応表。
// 未知のステータスはここに載せず、呼び出し側でログを出して読み捨てる(前方互換)。
var providerStatusMap = map[string]SubscriptionStatus{
	"active":             StatusActive,
	"trialing":           StatusActive,
	"past_due":           StatusPastDue,
	"unpaid":             StatusPastDue,
	"canceled":           StatusCanceled,
	"incomplete_expired": StatusCanceled,
	"incomplete":         StatusPendingSubscription,
}

// MapProviderStatus はプロバイダ報告のステータスを内部enumに変換する
func MapProviderStatus(providerStatus string) (SubscriptionStatus, bool) {
	status, ok := providerStatusMap[providerStatus]
	return status, ok
}

// IdentityEvent はIDプロバイダからの通知(サインアップ・メール確認完了)の内部表現
type IdentityEvent struct {
	Type string            `json:"type"`
	User IdentityEventUser `json:"user"`
}

type IdentityEventUser struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	EmailConfirmedAt *string `json:"email_confirmed_at"`
}

const (
	IdentityEventUserCreated   = "user.created"
	IdentityEventEmailVerified = "user.email_verified"
)
