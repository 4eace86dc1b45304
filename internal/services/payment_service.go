package services

import (
	"context"
	"errors"
	"fmt"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentService interface {
	// Pay settles an approved reservation and completes it.
	Pay(ctx context.Context, reservationID, payerID primitive.ObjectID) (*models.Reservation, error)
	GetForReservation(ctx context.Context, reservationID, actorID primitive.ObjectID) (*models.Payment, error)
}

type paymentService struct {
	paymentRepo     interfaces.PaymentRepository
	reservationRepo interfaces.ReservationRepository
	processor       payment.Processor
	locker          Locker
	tx              Transactor
	booked          *bookedRanges
	notifications   NotificationService
	opts            BookingOptions
	logger          *logger.Logger
}

func NewPaymentService(
	paymentRepo interfaces.PaymentRepository,
	reservationRepo interfaces.ReservationRepository,
	processor payment.Processor,
	locker Locker,
	cache Cache,
	tx Transactor,
	notifications NotificationService,
	opts BookingOptions,
	logger *logger.Logger,
) PaymentService {
	opts = opts.withDefaults()
	return &paymentService{
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		processor:       processor,
		locker:          locker,
		tx:              orDirect(tx),
		booked:          &bookedRanges{cache: cache, ttl: opts.BookedListTTL, log: logger},
		notifications:   notifications,
		opts:            opts,
		logger:          logger,
	}
}

func (s *paymentService) Pay(ctx context.Context, reservationID, payerID primitive.ObjectID) (*models.Reservation, error) {
	unlock, err := acquire(ctx, s.locker, utils.LockReservationPrefix+reservationID.Hex(), s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.GuestID != payerID {
		return nil, utils.NewForbiddenError("only the guest can pay for this reservation")
	}
	if reservation.PaymentStatus != models.ReservationUnpaid {
		return nil, utils.NewAlreadyPaidError("reservation is already paid")
	}
	if reservation.Status != models.ReservationStatusApproved {
		return nil, utils.NewInvalidStateError("reservation must be approved by the host before payment")
	}

	record, err := s.preparePayment(ctx, reservation, payerID)
	if err != nil {
		return nil, err
	}

	result, err := s.processor.ProcessPayment(ctx, &payment.PaymentRequest{
		ReservationID: reservation.ID.Hex(),
		Amount:        reservation.TotalPrice,
		Currency:      s.opts.Currency,
		Description:   fmt.Sprintf("Caravan reservation %s (%d nights)", reservation.ID.Hex(), reservation.Nights),
		Metadata: map[string]string{
			"caravan_id": reservation.CaravanID.Hex(),
			"guest_id":   payerID.Hex(),
		},
	})
	if err != nil {
		s.fail(ctx, record, err.Error())
		if errors.Is(err, payment.ErrPaymentDeclined) {
			return nil, &utils.AppError{Kind: utils.KindValidation, Message: "payment was declined", Err: err}
		}
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	updated, err := s.settle(ctx, reservation, record, result.TransactionID)
	if err != nil {
		return nil, err
	}

	unlock()

	s.booked.invalidate(ctx, updated.CaravanID)
	s.logger.LogPaymentEvent(record.ID, utils.EventPaymentProcessed, reservation.TotalPrice, s.opts.Currency)
	s.notifications.Notify(ctx, reservationNotification(updated.HostID, models.NotificationReservationPaid,
		"Reservation paid", "The guest completed payment for a reservation.", updated))

	return updated, nil
}

// settle flips the reservation to completed/paid and the payment record to
// completed as one unit.
func (s *paymentService) settle(ctx context.Context, reservation *models.Reservation, record *models.Payment, transactionID string) (*models.Reservation, error) {
	var updated *models.Reservation
	marked := false
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		res, matched, err := s.reservationRepo.MarkPaid(ctx, reservation.ID)
		if err != nil {
			return fmt.Errorf("failed to complete reservation: %w", err)
		}
		if !matched {
			return utils.NewInvalidStateError("reservation is no longer payable")
		}
		marked = true
		if err := s.paymentRepo.MarkCompleted(ctx, record.ID, s.processor.Name(), transactionID, s.opts.Now()); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		updated = res
		return nil
	})
	if err == nil {
		return updated, nil
	}

	// Without a transaction the reservation stays paid after a failed
	// payment write.
	if marked {
		if revertErr := s.reservationRepo.RevertPaid(ctx, reservation.ID); revertErr != nil {
			s.logger.WithError(revertErr).WithReservationID(reservation.ID).Error("Failed to roll back reservation payment status")
		}
	}
	s.logger.WithError(err).WithReservationID(reservation.ID).Error("Failed to settle payment")
	s.fail(ctx, record, err.Error())
	return nil, err
}

func (s *paymentService) GetForReservation(ctx context.Context, reservationID, actorID primitive.ObjectID) (*models.Payment, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.IsParty(actorID) {
		return nil, utils.NewForbiddenError("not a party to this reservation")
	}
	return s.paymentRepo.GetByReservationID(ctx, reservationID)
}

// preparePayment creates the payment record, or reuses a pending or failed
// one from an earlier attempt.
func (s *paymentService) preparePayment(ctx context.Context, reservation *models.Reservation, payerID primitive.ObjectID) (*models.Payment, error) {
	fee := s.opts.platformFee(reservation.TotalPrice)
	existing, err := s.paymentRepo.GetByReservationID(ctx, reservation.ID)
	switch {
	case err == nil:
		if existing.Status == models.PaymentStatusCompleted {
			return nil, utils.NewAlreadyPaidError("a completed payment already exists for this reservation")
		}
		if err := s.paymentRepo.MarkPending(ctx, existing.ID, reservation.TotalPrice, fee); err != nil {
			return nil, fmt.Errorf("failed to reuse payment: %w", err)
		}
		existing.Status = models.PaymentStatusPending
		existing.Amount = reservation.TotalPrice
		existing.PlatformFee = fee
		return existing, nil
	case !errors.Is(err, utils.ErrNotFound):
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}

	record := &models.Payment{
		ReservationID: reservation.ID,
		PayerID:       payerID,
		HostID:        reservation.HostID,
		Amount:        reservation.TotalPrice,
		PlatformFee:   fee,
		Currency:      s.opts.Currency,
		Status:        models.PaymentStatusPending,
		Gateway:       s.processor.Name(),
	}
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *paymentService) fail(ctx context.Context, record *models.Payment, reason string) {
	if err := s.paymentRepo.MarkFailed(ctx, record.ID, reason); err != nil {
		s.logger.WithError(err).Error("Failed to mark payment failed")
	}
	s.logger.LogPaymentEvent(record.ID, utils.EventPaymentFailed, record.Amount, record.Currency)
}
