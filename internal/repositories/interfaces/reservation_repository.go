package interfaces

import (
	"context"

	"caravanshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error)
	ListByGuest(ctx context.Context, guestID primitive.ObjectID) ([]*models.Reservation, error)
	ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Reservation, error)
	// ListByCaravan returns reservations in any of statuses, ordered by start date.
	ListByCaravan(ctx context.Context, caravanID primitive.ObjectID, statuses []models.ReservationStatus) ([]*models.Reservation, error)
	// FindOverlapping returns reservations in statuses whose half-open range intersects r.
	FindOverlapping(ctx context.Context, caravanID primitive.ObjectID, r models.DateRange, statuses []models.ReservationStatus) ([]*models.Reservation, error)
	CountByCaravan(ctx context.Context, caravanID primitive.ObjectID, statuses []models.ReservationStatus) (int64, error)

	// TransitionStatus moves the reservation from -> to only if it is still
	// in from. matched reports whether the swap happened.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (updated *models.Reservation, matched bool, err error)
	// MarkPaid moves approved+unpaid to completed+paid in one write.
	MarkPaid(ctx context.Context, id primitive.ObjectID) (updated *models.Reservation, matched bool, err error)
	// RevertPaid undoes MarkPaid. It is a no-op unless the reservation is
	// completed+paid.
	RevertPaid(ctx context.Context, id primitive.ObjectID) error
	// SetFlag sets flag only while it is false. set reports whether this call flipped it.
	SetFlag(ctx context.Context, id primitive.ObjectID, flag models.ReservationFlag) (set bool, err error)
	ClearFlag(ctx context.Context, id primitive.ObjectID, flag models.ReservationFlag) error
}
