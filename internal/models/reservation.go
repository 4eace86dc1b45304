package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string
type ReservationPaymentStatus string
type ReservationFlag string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusApproved  ReservationStatus = "approved"
	ReservationStatusRejected  ReservationStatus = "rejected"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"

	ReservationUnpaid ReservationPaymentStatus = "unpaid"
	ReservationPaid   ReservationPaymentStatus = "paid"

	FlagReviewed         ReservationFlag = "reviewed"
	FlagGuestRatedByHost ReservationFlag = "guest_rated_by_host"
	FlagHostRatedByGuest ReservationFlag = "host_rated_by_guest"
)

// BlockingStatuses are the states whose date range occupies the caravan.
var BlockingStatuses = []ReservationStatus{
	ReservationStatusApproved,
	ReservationStatusCompleted,
}

type Reservation struct {
	ID               primitive.ObjectID       `json:"id" bson:"_id,omitempty"`
	GuestID          primitive.ObjectID       `json:"guest_id" bson:"guest_id"`
	CaravanID        primitive.ObjectID       `json:"caravan_id" bson:"caravan_id"`
	HostID           primitive.ObjectID       `json:"host_id" bson:"host_id"`
	StartDate        time.Time                `json:"start_date" bson:"start_date"`
	EndDate          time.Time                `json:"end_date" bson:"end_date"`
	Nights           int                      `json:"nights" bson:"nights"`
	TotalPrice       float64                  `json:"total_price" bson:"total_price"`
	Status           ReservationStatus        `json:"status" bson:"status"`
	PaymentStatus    ReservationPaymentStatus `json:"payment_status" bson:"payment_status"`
	Reviewed         bool                     `json:"reviewed" bson:"reviewed"`
	GuestRatedByHost bool                     `json:"guest_rated_by_host" bson:"guest_rated_by_host"`
	HostRatedByGuest bool                     `json:"host_rated_by_guest" bson:"host_rated_by_guest"`
	CreatedAt        time.Time                `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at" bson:"updated_at"`
}

type DateRange struct {
	Start time.Time `json:"start" bson:"start_date"`
	End   time.Time `json:"end" bson:"end_date"`
}

// Overlaps treats both ranges as half-open, so a checkout day can be
// another stay's check-in day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

func (r *Reservation) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

func (r *Reservation) IsBlocking() bool {
	for _, s := range BlockingStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

func (r *Reservation) HasFlag(flag ReservationFlag) bool {
	switch flag {
	case FlagReviewed:
		return r.Reviewed
	case FlagGuestRatedByHost:
		return r.GuestRatedByHost
	case FlagHostRatedByGuest:
		return r.HostRatedByGuest
	}
	return false
}

func (r *Reservation) SetFlag(flag ReservationFlag) {
	r.setFlag(flag, true)
}

func (r *Reservation) ClearFlag(flag ReservationFlag) {
	r.setFlag(flag, false)
}

func (r *Reservation) setFlag(flag ReservationFlag, value bool) {
	switch flag {
	case FlagReviewed:
		r.Reviewed = value
	case FlagGuestRatedByHost:
		r.GuestRatedByHost = value
	case FlagHostRatedByGuest:
		r.HostRatedByGuest = value
	}
}

func (r *Reservation) IsParty(userID primitive.ObjectID) bool {
	return r.GuestID == userID || r.HostID == userID
}
