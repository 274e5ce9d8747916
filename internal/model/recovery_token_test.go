package model_test

import (
	"testing"
	"time"

	"member_gate/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestRecoveryToken_Redeemable(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name  string
		token *model.RecoveryToken
		want  bool
	}{
		{
			name:  "発行直後は償還可能",
			token: &model.RecoveryToken{CreatedAt: now},
			want:  true,
		},
		{
			name:  "発行から24時間ちょうどはまだ有効",
			token: &model.RecoveryToken{CreatedAt: now.Add(-model.RecoveryTokenTTL)},
			want:  true,
		},
		{
			name:  "発行から24時間を1秒でも過ぎたら失効",
			token: &model.RecoveryToken{CreatedAt: now.Add(-model.RecoveryTokenTTL - time.Second)},
			want:  false,
		},
		{
			name:  "使用済みは期限内でも償還不可",
			token: &model.RecoveryToken{CreatedAt: now, Used: true},
			want:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.token.Redeemable(now))
		})
	}
}

func TestRecoveryToken_ExpiresAt(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := &model.RecoveryToken{CreatedAt: createdAt}

	assert.Equal(t, createdAt.Add(24*time.Hour), token.ExpiresAt())
}
