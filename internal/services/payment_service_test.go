package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/memory"
	"caravanshare/internal/utils"
	"caravanshare/pkg/cache"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type decliningProcessor struct {
	calls int
}

func (d *decliningProcessor) Name() string { return "declining" }

func (d *decliningProcessor) ProcessPayment(ctx context.Context, request *payment.PaymentRequest) (*payment.PaymentResponse, error) {
	d.calls++
	return nil, payment.ErrPaymentDeclined
}

func TestPayCompletesReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 100000)
	r := f.reserve(t, guest, c, date(time.June, 1), date(time.June, 4))
	_, err := f.booking.Approve(ctx, r.ID, host.ID)
	require.NoError(t, err)

	paid, err := f.payment.Pay(ctx, r.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCompleted, paid.Status)
	assert.Equal(t, models.ReservationPaid, paid.PaymentStatus)

	record, err := f.payment.GetForReservation(ctx, r.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, record.Status)
	assert.Equal(t, 300000.0, record.Amount)
	assert.Equal(t, "mock", record.Gateway)
	assert.Regexp(t, `^mock_txn_[0-9a-f-]{36}$`, record.TransactionID)
	assert.Contains(t, f.notifier.types(), models.NotificationReservationPaid)

	_, err = f.payment.Pay(ctx, r.ID, guest.ID)
	assert.ErrorIs(t, err, utils.ErrAlreadyPaid)
}

func TestPayPreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 100000)
	r := f.reserve(t, guest, c, date(time.June, 1), date(time.June, 4))

	_, err := f.payment.Pay(ctx, primitive.NewObjectID(), guest.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.payment.Pay(ctx, r.ID, host.ID)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = f.payment.Pay(ctx, r.ID, guest.ID)
	assert.ErrorIs(t, err, utils.ErrInvalidState)

	_, err = f.payments.GetByReservationID(ctx, r.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestPayRejectsExistingCompletedPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 1000)
	r := f.reserve(t, guest, c, date(time.June, 1), date(time.June, 2))
	_, err := f.booking.Approve(ctx, r.ID, host.ID)
	require.NoError(t, err)

	require.NoError(t, f.payments.Create(ctx, &models.Payment{
		ReservationID: r.ID,
		PayerID:       guest.ID,
		Amount:        1000,
		Status:        models.PaymentStatusCompleted,
	}))

	_, err = f.payment.Pay(ctx, r.ID, guest.ID)
	assert.ErrorIs(t, err, utils.ErrAlreadyPaid)

	still, err := f.reservations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusApproved, still.Status)
}

func TestPayDeclinedLeavesReservationPayable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 1000)
	r := f.reserve(t, guest, c, date(time.June, 1), date(time.June, 2))
	_, err := f.booking.Approve(ctx, r.ID, host.ID)
	require.NoError(t, err)

	declining := &decliningProcessor{}
	svc := NewPaymentService(f.payments, f.reservations, declining, cache.NewLocalLocker(), f.cache, nil, f.notifier,
		BookingOptions{Now: func() time.Time { return f.now }}, logger.Nop())

	_, err = svc.Pay(ctx, r.ID, guest.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.True(t, errors.Is(err, payment.ErrPaymentDeclined))

	record, err := f.payments.GetByReservationID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, record.Status)

	// A retry through a working gateway reuses the failed record.
	paid, err := f.payment.Pay(ctx, r.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPaid, paid.PaymentStatus)

	again, err := f.payments.GetByReservationID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)
	assert.Equal(t, models.PaymentStatusCompleted, again.Status)
	assert.Empty(t, again.FailureReason)
}

func TestConcurrentPayChargesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 1000)
	r := f.reserve(t, guest, c, date(time.June, 1), date(time.June, 2))
	_, err := f.booking.Approve(ctx, r.ID, host.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.payment.Pay(ctx, r.ID, guest.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, utils.ErrAlreadyPaid)
	}
	assert.Equal(t, 1, succeeded)
}

// flakyPayments fails the first MarkCompleted call.
type flakyPayments struct {
	*memory.PaymentRepository
	failed bool
}

func (p *flakyPayments) MarkCompleted(ctx context.Context, id primitive.ObjectID, gateway, transactionID string, processedAt time.Time) error {
	if !p.failed {
		p.failed = true
		return errors.New("write failed")
	}
	return p.PaymentRepository.MarkCompleted(ctx, id, gateway, transactionID, processedAt)
}

func TestPayRevertsReservationWhenPaymentWriteFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 1000)
	r := f.reserve(t, guest, c, date(time.June, 1), date(time.June, 3))
	_, err := f.booking.Approve(ctx, r.ID, host.ID)
	require.NoError(t, err)

	tx := &countingTx{}
	payments := &flakyPayments{PaymentRepository: f.payments}
	svc := NewPaymentService(payments, f.reservations, payment.NewMockProcessor(nil), cache.NewLocalLocker(), f.cache, tx, f.notifier,
		BookingOptions{Now: func() time.Time { return f.now }}, logger.Nop())

	_, err = svc.Pay(ctx, r.ID, guest.ID)
	require.Error(t, err)
	assert.Equal(t, 1, tx.calls)

	stored, err := f.reservations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusApproved, stored.Status)
	assert.Equal(t, models.ReservationUnpaid, stored.PaymentStatus)

	record, err := f.payments.GetByReservationID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, record.Status)

	paid, err := svc.Pay(ctx, r.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCompleted, paid.Status)
	assert.Equal(t, models.ReservationPaid, paid.PaymentStatus)

	record, err = f.payments.GetByReservationID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, record.Status)
}
