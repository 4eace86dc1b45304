package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockProcessor always succeeds and issues mock_txn_<uuid> ids.
type MockProcessor struct {
	now func() time.Time
}

func NewMockProcessor(now func() time.Time) *MockProcessor {
	if now == nil {
		now = time.Now
	}
	return &MockProcessor{now: now}
}

func (m *MockProcessor) Name() string {
	return "mock"
}

func (m *MockProcessor) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		TransactionID: "mock_txn_" + uuid.NewString(),
		Status:        StatusSucceeded,
		Amount:        request.Amount,
		Currency:      request.Currency,
		CreatedAt:     m.now().Unix(),
	}, nil
}
