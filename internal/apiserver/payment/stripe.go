package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeCreator 基于 Stripe PaymentIntents 的 IntentCreator 实现
type StripeCreator struct {
	api *client.API
}

// NewStripeCreator 创建 Stripe 支付适配器
//
// 持有独立的 client.API 实例而不是写 stripe.Key 全局变量，
// 便于多实例与测试注入。
func NewStripeCreator(secretKey string) *StripeCreator {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeCreator{api: api}
}

// CreateIntent 创建支付意向，返回 client secret
func (s *StripeCreator) CreateIntent(ctx context.Context, amountCents int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
			// 幂等键防止网络重试产生重复扣款
			IdempotencyKey: stripe.String(uuid.NewString()),
		},
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}
