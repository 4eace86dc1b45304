package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeProvider struct {
	client        *client.API
	paymentMethod string
}

func NewStripeProvider(secretKey, paymentMethod string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		client:        sc,
		paymentMethod: paymentMethod,
	}
}

func (s *StripeProvider) Name() string {
	return "stripe"
}

func (s *StripeProvider) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(request.Amount, request.Currency)),
		Currency:      stripe.String(strings.ToLower(request.Currency)),
		PaymentMethod: stripe.String(s.paymentMethod),
		Description:   stripe.String(request.Description),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("reservation-" + request.ReservationID)

	params.AddMetadata("reservation_id", request.ReservationID)
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: intent %s is %s", ErrPaymentDeclined, pi.ID, pi.Status)
	}

	return &PaymentResponse{
		TransactionID: pi.ID,
		Status:        StatusSucceeded,
		Amount:        fromMinorUnits(pi.Amount, string(pi.Currency)),
		Currency:      strings.ToUpper(string(pi.Currency)),
		CreatedAt:     pi.Created,
	}, nil
}

var zeroDecimalCurrencies = map[string]bool{
	"krw": true, "jpy": true, "vnd": true, "clp": true, "pyg": true,
}

func toMinorUnits(amount float64, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64, currency string) float64 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return float64(amount)
	}
	return float64(amount) / 100
}
