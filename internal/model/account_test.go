package model_test

import (
	"testing"
	"time"

	"member_gate/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDeriveState(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name    string
		account *model.Account
		want    model.AccountState
	}{
		{
			name: "メール未確認ならステータス列に関わらず pending_email",
			account: &model.Account{
				EmailVerifiedAt:    nil,
				SubscriptionStatus: model.StatusActive, // 順序逆転でWebhookが先に届いたケース
			},
			want: model.AccountState{
				Status:                 model.StatusPendingEmail,
				NeedsEmailVerification: true,
			},
		},
		{
			name: "メール確認済み・未契約なら pending_subscription",
			account: &model.Account{
				EmailVerifiedAt:    &now,
				SubscriptionStatus: model.StatusPendingSubscription,
			},
			want: model.AccountState{
				Status:            model.StatusPendingSubscription,
				NeedsSubscription: true,
			},
		},
		{
			name: "メール確認済み・契約中ならダッシュボードにアクセス可能",
			account: &model.Account{
				EmailVerifiedAt:    &now,
				SubscriptionStatus: model.StatusActive,
			},
			want: model.AccountState{
				Status:             model.StatusActive,
				CanAccessDashboard: true,
			},
		},
		{
			name: "支払い遅延中はアクセス不可で契約導線に戻す",
			account: &model.Account{
				EmailVerifiedAt:    &now,
				SubscriptionStatus: model.StatusPastDue,
			},
			want: model.AccountState{
				Status:            model.StatusPendingSubscription,
				NeedsSubscription: true,
			},
		},
		{
			name: "解約済みもアクセス不可で契約導線に戻す",
			account: &model.Account{
				EmailVerifiedAt:    &now,
				SubscriptionStatus: model.StatusCanceled,
			},
			want: model.AccountState{
				Status:            model.StatusPendingSubscription,
				NeedsSubscription: true,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := model.DeriveState(tc.account)
			assert.Equal(t, tc.want, got)
		})
	}
}
