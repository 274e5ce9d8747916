package model_test

import (
	"testing"

	"member_gate/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestMapProviderStatus(t *testing.T) {
	testCases := []struct {
		name           string
		providerStatus string
		want           model.SubscriptionStatus
		wantOK         bool
	}{
		{name: "active はそのまま契約中", providerStatus: "active", want: model.StatusActive, wantOK: true},
		{name: "trialing も契約中として扱う", providerStatus: "trialing", want: model.StatusActive, wantOK: true},
		{name: "past_due は支払い遅延", providerStatus: "past_due", want: model.StatusPastDue, wantOK: true},
		{name: "unpaid も支払い遅延として扱う", providerStatus: "unpaid", want: model.StatusPastDue, wantOK: true},
		{name: "canceled は解約済み", providerStatus: "canceled", want: model.StatusCanceled, wantOK: true},
		{name: "incomplete_expired は解約済みとして扱う", providerStatus: "incomplete_expired", want: model.StatusCanceled, wantOK: true},
		{name: "incomplete は未契約のまま", providerStatus: "incomplete", want: model.StatusPendingSubscription, wantOK: true},
		{name: "未知のステータスはマップしない", providerStatus: "paused", wantOK: false},
		{name: "空文字列もマップしない", providerStatus: "", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := model.MapProviderStatus(tc.providerStatus)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
