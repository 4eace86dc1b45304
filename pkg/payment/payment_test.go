package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProcessorAlwaysSucceeds(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewMockProcessor(func() time.Time { return fixed })

	resp, err := p.ProcessPayment(context.Background(), &PaymentRequest{
		ReservationID: "r1",
		Amount:        300000,
		Currency:      "KRW",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, resp.Status)
	assert.Regexp(t, `^mock_txn_[0-9a-f-]{36}$`, resp.TransactionID)
	assert.Equal(t, fixed.Unix(), resp.CreatedAt)
	assert.Equal(t, 300000.0, resp.Amount)
	assert.Equal(t, "mock", p.Name())

	// A frozen clock must not collapse ids.
	again, err := p.ProcessPayment(context.Background(), &PaymentRequest{Amount: 1})
	require.NoError(t, err)
	assert.NotEqual(t, resp.TransactionID, again.TransactionID)
}

func TestMockProcessorHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockProcessor(nil).ProcessPayment(ctx, &PaymentRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(300000), toMinorUnits(300000, "KRW"))
	assert.Equal(t, int64(1999), toMinorUnits(19.99, "usd"))
	assert.Equal(t, 19.99, fromMinorUnits(1999, "usd"))
	assert.Equal(t, 300000.0, fromMinorUnits(300000, "krw"))
}
