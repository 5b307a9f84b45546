package gateway

import (
	"context"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeGateway Stripe Checkout 实现
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		// Stripe 不接受空字符串 description
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		if len(item.Images) > 0 {
			productData.Images = stripe.StringSlice(item.Images)
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(item.Currency),
				UnitAmount:  stripe.Int64(item.UnitAmount),
				ProductData: productData,
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		Metadata: map[string]string{
			MetadataOrderIDKey: strconv.FormatUint(uint64(input.OrderID), 10),
		},
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return FromStripeSession(s), nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, err
	}

	return FromStripeSession(s), nil
}

// FromStripeSession Stripe 会话转内部表示（回调 handler 也复用）
func FromStripeSession(s *stripe.CheckoutSession) *Session {
	if s == nil {
		return nil
	}

	paymentRef := ""
	if s.PaymentIntent != nil {
		paymentRef = s.PaymentIntent.ID
	}

	return &Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		PaymentRef:    paymentRef,
		Metadata:      s.Metadata,
	}
}

// 确保实现了接口
var _ PaymentGateway = (*StripeGateway)(nil)
