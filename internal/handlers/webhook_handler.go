package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"member_gate/internal/config"
	"member_gate/internal/middleware"
	"member_gate/internal/model"
	"member_gate/internal/service"
	"member_gate/internal/webutil"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// maxWebhookBodyBytes はWebhookボディの上限。プロバイダのイベントはこれより十分小さい
const maxWebhookBodyBytes = 64 * 1024

type WebhookHandler struct {
	service service.LifecycleService
	cfg     *config.Config
}

func NewWebhookHandler(s service.LifecycleService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{service: s, cfg: cfg}
}

// HandlePaymentWebhook は決済プロバイダからのWebhookを受け付けます。
// 署名検証に失敗したリクエストは、一切の状態変更を行わずに拒否します。
// 2xx以外を返すとプロバイダが再配送するため、ストア障害などの一時的なエラーだけ5xxを返し、
// アカウントを解決できない・種別が未知などの恒久的なケースは読み捨てて200を返します
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディを読み取れませんでした。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.cfg.Stripe.WebhookSecret)
	if err != nil {
		logger.Warn("Webhook signature verification failed", "error", err)
		appErr := model.NewAppError("INVALID_SIGNATURE", "署名の検証に失敗しました。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	logger = logger.With("event_id", event.ID, "event_type", string(event.Type))

	paymentEvent, err := h.parsePaymentEvent(&event)
	if err != nil {
		logger.Warn("Failed to parse webhook event payload", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "イベントペイロードの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if paymentEvent == nil {
		// 購読していない種別。前方互換のため受領だけ返す
		logger.Info("Ignoring unhandled webhook event type")
		webutil.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true}, logger)
		return
	}

	if err := h.service.ApplyPaymentEvent(r.Context(), paymentEvent); err != nil {
		logger.Error("Failed to apply payment event", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true}, logger)
}

// parsePaymentEvent は署名検証済みイベントを内部表現に変換する。
// 購読していない種別は (nil, nil) を返す
func (h *WebhookHandler) parsePaymentEvent(event *stripe.Event) (*model.PaymentEvent, error) {
	kind := model.PaymentEventKind(event.Type)

	switch kind {
	case model.PaymentEventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, err
		}
		ev := &model.PaymentEvent{Kind: kind, Email: session.CustomerEmail}
		if ev.Email == "" && session.CustomerDetails != nil {
			ev.Email = session.CustomerDetails.Email
		}
		if session.Customer != nil {
			ev.CustomerRef = session.Customer.ID
		}
		if session.Subscription != nil {
			ev.SubscriptionRef = session.Subscription.ID
		}
		return ev, nil

	case model.PaymentEventSubscriptionCreated, model.PaymentEventSubscriptionUpdated, model.PaymentEventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, err
		}
		ev := &model.PaymentEvent{
			Kind:            kind,
			SubscriptionRef: sub.ID,
			ProviderStatus:  string(sub.Status),
		}
		if sub.Customer != nil {
			ev.CustomerRef = sub.Customer.ID
		}
		return ev, nil

	case model.PaymentEventInvoiceSucceeded, model.PaymentEventInvoiceFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, err
		}
		ev := &model.PaymentEvent{Kind: kind}
		if invoice.Customer != nil {
			ev.CustomerRef = invoice.Customer.ID
		}
		if invoice.Subscription != nil {
			ev.SubscriptionRef = invoice.Subscription.ID
		}
		return ev, nil

	default:
		return nil, nil
	}
}

// HandleIdentityWebhook はIDプロバイダからの通知(サインアップ・メール確認完了)を受け付けます。
// 共有シークレットヘッダで送信元を検証します
func (h *WebhookHandler) HandleIdentityWebhook(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	secret := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.Identity.WebhookSecret)) != 1 {
		logger.Warn("Identity webhook with invalid shared secret")
		appErr := model.NewAppError("UNAUTHORIZED", "認証に失敗しました。", "", model.ErrUnauthorized)
		webutil.HandleError(w, logger, appErr)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	var event model.IdentityEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		logger.Warn("Failed to decode identity webhook body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	accountID, err := uuid.Parse(event.User.ID)
	if err != nil {
		logger.Warn("Identity webhook with invalid user id", "user_id", event.User.ID)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "ユーザーIDの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	logger = logger.With("event_type", event.Type, "account_id", accountID)

	switch event.Type {
	case model.IdentityEventUserCreated:
		if err := h.service.EnsureAccount(r.Context(), accountID, event.User.Email); err != nil {
			webutil.HandleError(w, logger, err)
			return
		}

	case model.IdentityEventEmailVerified:
		verifiedAt := time.Now()
		if event.User.EmailConfirmedAt != nil {
			if t, err := time.Parse(time.RFC3339, *event.User.EmailConfirmedAt); err == nil {
				verifiedAt = t
			}
		}
		if err := h.service.MarkEmailVerified(r.Context(), accountID, verifiedAt); err != nil {
			webutil.HandleError(w, logger, err)
			return
		}

	default:
		// 未知の種別は読み捨てる
		logger.Info("Ignoring unhandled identity event type")
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true}, logger)
}
