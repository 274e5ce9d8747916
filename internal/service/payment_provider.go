package service

import (
	"context"

	"member_gate/internal/config"
	"member_gate/internal/middleware"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// PaymentProvider は決済プロバイダへの操作。チェックアウトUIや料金カタログはプロバイダ側の
// 責務で、このコアが必要とするのは顧客オブジェクトの作成だけ。
type PaymentProvider interface {
	// CreateCustomer はメールアドレスに紐づく顧客をプロバイダ側に作成し、その参照IDを返す
	CreateCustomer(ctx context.Context, email string) (string, error)
}

type stripePaymentProvider struct {
	api *client.API
}

func NewStripePaymentProvider(cfg *config.StripeConfig) PaymentProvider {
	return &stripePaymentProvider{
		api: client.New(cfg.SecretKey, nil),
	}
}

func (p *stripePaymentProvider) CreateCustomer(ctx context.Context, email string) (string, error) {
	logger := middleware.GetLogger(ctx)

	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	customer, err := p.api.Customers.New(params)
	if err != nil {
		logger.Error("Failed to create payment customer", "error", err, "email", email)
		return "", err
	}

	logger.Info("Payment customer created", "customer_ref", customer.ID)
	return customer.ID, nil
}
