package services

import (
	"context"
	"fmt"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationService interface {
	Create(ctx context.Context, guestID primitive.ObjectID, input *CreateReservationInput) (*models.Reservation, error)
	Approve(ctx context.Context, reservationID, hostID primitive.ObjectID) (*models.Reservation, error)
	Reject(ctx context.Context, reservationID, hostID primitive.ObjectID) (*models.Reservation, error)
	Cancel(ctx context.Context, reservationID, actorID primitive.ObjectID) (*models.Reservation, error)

	Get(ctx context.Context, reservationID, actorID primitive.ObjectID) (*models.Reservation, error)
	ListForGuest(ctx context.Context, guestID primitive.ObjectID) ([]*models.Reservation, error)
	ListForHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Reservation, error)
	ListBookedDateRanges(ctx context.Context, caravanID primitive.ObjectID) ([]models.DateRange, error)
}

type CreateReservationInput struct {
	CaravanID primitive.ObjectID
	StartDate time.Time
	EndDate   time.Time
}

type reservationService struct {
	reservationRepo interfaces.ReservationRepository
	caravanRepo     interfaces.CaravanRepository
	availability    AvailabilityService
	locker          Locker
	booked          *bookedRanges
	notifications   NotificationService
	opts            BookingOptions
	logger          *logger.Logger
}

func NewReservationService(
	reservationRepo interfaces.ReservationRepository,
	caravanRepo interfaces.CaravanRepository,
	availability AvailabilityService,
	locker Locker,
	cache Cache,
	notifications NotificationService,
	opts BookingOptions,
	logger *logger.Logger,
) ReservationService {
	opts = opts.withDefaults()
	return &reservationService{
		reservationRepo: reservationRepo,
		caravanRepo:     caravanRepo,
		availability:    availability,
		locker:          locker,
		booked:          &bookedRanges{cache: cache, ttl: opts.BookedListTTL, log: logger},
		notifications:   notifications,
		opts:            opts,
		logger:          logger,
	}
}

func (s *reservationService) Create(ctx context.Context, guestID primitive.ObjectID, input *CreateReservationInput) (*models.Reservation, error) {
	// Stays are whole calendar days in the booking timezone.
	dr := models.DateRange{
		Start: utils.StartOfDay(input.StartDate.In(s.opts.Location)),
		End:   utils.StartOfDay(input.EndDate.In(s.opts.Location)),
	}
	if err := s.availability.ValidateRange(dr); err != nil {
		return nil, err
	}

	caravan, err := s.caravanRepo.GetByID(ctx, input.CaravanID)
	if err != nil {
		return nil, err
	}
	if caravan.Status != models.CaravanStatusAvailable {
		return nil, utils.NewInvalidStateError("caravan is not accepting reservations")
	}
	if caravan.HostID == guestID {
		return nil, utils.NewForbiddenError("hosts cannot reserve their own caravan")
	}

	unlock, err := acquire(ctx, s.locker, utils.LockCaravanPrefix+caravan.ID.Hex(), s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	available, err := s.availability.IsAvailable(ctx, caravan.ID, dr)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, utils.NewConflictError("caravan is already booked for the selected dates")
	}

	nights := utils.NightsBetween(dr.Start, dr.End)
	reservation := &models.Reservation{
		GuestID:       guestID,
		CaravanID:     caravan.ID,
		HostID:        caravan.HostID,
		StartDate:     dr.Start,
		EndDate:       dr.End,
		Nights:        nights,
		TotalPrice:    float64(nights) * caravan.DailyRate,
		Status:        models.ReservationStatusPending,
		PaymentStatus: models.ReservationUnpaid,
		CreatedAt:     s.opts.Now(),
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		s.logger.WithError(err).Error("Failed to create reservation")
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.logger.LogReservationEvent(reservation.ID, utils.EventReservationCreated, map[string]interface{}{
		"guest_id":    guestID.Hex(),
		"caravan_id":  caravan.ID.Hex(),
		"nights":      nights,
		"total_price": reservation.TotalPrice,
	})
	// Release before notifying; SMS delivery is a remote call.
	unlock()
	s.notifications.Notify(ctx, reservationNotification(caravan.HostID, models.NotificationReservationCreated,
		"New reservation request",
		fmt.Sprintf("%s requested for %s to %s", caravan.Name, dr.Start.Format(utils.DateLayout), dr.End.Format(utils.DateLayout)),
		reservation))

	return reservation, nil
}

func (s *reservationService) Approve(ctx context.Context, reservationID, hostID primitive.ObjectID) (*models.Reservation, error) {
	reservation, err := s.loadForHost(ctx, reservationID, hostID)
	if err != nil {
		return nil, err
	}

	unlock, err := acquire(ctx, s.locker, utils.LockCaravanPrefix+reservation.CaravanID.Hex(), s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Another reservation for the same dates may have been approved since
	// this one was requested.
	overlapping, err := s.reservationRepo.FindOverlapping(ctx, reservation.CaravanID, reservation.Range(), models.BlockingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	for _, other := range overlapping {
		if other.ID != reservation.ID {
			return nil, utils.NewConflictError("dates overlap an approved reservation")
		}
	}

	updated, err := s.transition(ctx, reservation.ID, models.ReservationStatusPending, models.ReservationStatusApproved)
	if err != nil {
		return nil, err
	}

	s.booked.invalidate(ctx, updated.CaravanID)
	s.logger.LogReservationEvent(updated.ID, utils.EventReservationApproved, map[string]interface{}{"host_id": hostID.Hex()})
	unlock()
	s.notifications.Notify(ctx, reservationNotification(updated.GuestID, models.NotificationReservationApproved,
		"Reservation approved", "Your reservation was approved. Complete the payment to confirm it.", updated))

	return updated, nil
}

func (s *reservationService) Reject(ctx context.Context, reservationID, hostID primitive.ObjectID) (*models.Reservation, error) {
	reservation, err := s.loadForHost(ctx, reservationID, hostID)
	if err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, reservation.ID, models.ReservationStatusPending, models.ReservationStatusRejected)
	if err != nil {
		return nil, err
	}

	s.logger.LogReservationEvent(updated.ID, utils.EventReservationRejected, map[string]interface{}{"host_id": hostID.Hex()})
	s.notifications.Notify(ctx, reservationNotification(updated.GuestID, models.NotificationReservationRejected,
		"Reservation rejected", "Your reservation request was declined by the host.", updated))

	return updated, nil
}

func (s *reservationService) Cancel(ctx context.Context, reservationID, actorID primitive.ObjectID) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.IsParty(actorID) {
		return nil, utils.NewForbiddenError("only the guest or host can cancel this reservation")
	}

	// Shares the payment lock so a cancel cannot interleave with a charge.
	unlock, err := acquire(ctx, s.locker, utils.LockReservationPrefix+reservation.ID.Hex(), s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *models.Reservation
	for _, from := range []models.ReservationStatus{models.ReservationStatusPending, models.ReservationStatusApproved} {
		res, matched, err := s.reservationRepo.TransitionStatus(ctx, reservation.ID, from, models.ReservationStatusCancelled)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel reservation: %w", err)
		}
		if matched {
			updated = res
			break
		}
	}
	if updated == nil {
		return nil, utils.NewInvalidStateError("only pending or approved reservations can be cancelled")
	}

	s.booked.invalidate(ctx, updated.CaravanID)
	s.logger.LogReservationEvent(updated.ID, utils.EventReservationCancel, map[string]interface{}{"actor_id": actorID.Hex()})

	unlock()

	notify := updated.HostID
	if actorID == updated.HostID {
		notify = updated.GuestID
	}
	s.notifications.Notify(ctx, reservationNotification(notify, models.NotificationReservationCancelled,
		"Reservation cancelled", "A reservation was cancelled.", updated))

	return updated, nil
}

func (s *reservationService) Get(ctx context.Context, reservationID, actorID primitive.ObjectID) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.IsParty(actorID) {
		return nil, utils.NewForbiddenError("not a party to this reservation")
	}
	return reservation, nil
}

func (s *reservationService) ListForGuest(ctx context.Context, guestID primitive.ObjectID) ([]*models.Reservation, error) {
	return s.reservationRepo.ListByGuest(ctx, guestID)
}

func (s *reservationService) ListForHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Reservation, error) {
	return s.reservationRepo.ListByHost(ctx, hostID)
}

func (s *reservationService) ListBookedDateRanges(ctx context.Context, caravanID primitive.ObjectID) ([]models.DateRange, error) {
	if ranges, ok := s.booked.get(ctx, caravanID); ok {
		return ranges, nil
	}

	if _, err := s.caravanRepo.GetByID(ctx, caravanID); err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.ListByCaravan(ctx, caravanID, models.BlockingStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked dates: %w", err)
	}

	ranges := make([]models.DateRange, 0, len(reservations))
	for _, r := range reservations {
		ranges = append(ranges, r.Range())
	}

	s.booked.put(ctx, caravanID, ranges)
	return ranges, nil
}

func (s *reservationService) loadForHost(ctx context.Context, reservationID, hostID primitive.ObjectID) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.HostID != hostID {
		return nil, utils.NewForbiddenError("only the caravan host can decide on this reservation")
	}
	if reservation.Status != models.ReservationStatusPending {
		return nil, utils.NewInvalidStateError(fmt.Sprintf("reservation is %s, not pending", reservation.Status))
	}
	return reservation, nil
}

func (s *reservationService) transition(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, error) {
	updated, matched, err := s.reservationRepo.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	if !matched {
		return nil, utils.NewInvalidStateError(fmt.Sprintf("reservation is no longer %s", from))
	}
	return updated, nil
}
