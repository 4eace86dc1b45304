package payment

import (
	"context"
	"errors"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

var ErrPaymentDeclined = errors.New("payment declined")

// Processor settles a reservation charge.
type Processor interface {
	Name() string
	ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error)
}

type PaymentRequest struct {
	ReservationID string            `json:"reservation_id"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description"`
	Metadata      map[string]string `json:"metadata"`
}

type PaymentResponse struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CreatedAt     int64   `json:"created_at"`
}
