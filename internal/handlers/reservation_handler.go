package handlers

import (
	"context"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationHandler struct {
	reservationService services.ReservationService
	location           *time.Location
}

// NewReservationHandler reads request dates as calendar days in loc.
func NewReservationHandler(reservationService services.ReservationService, loc *time.Location) *ReservationHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationHandler{
		reservationService: reservationService,
		location:           loc,
	}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	guestID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.ReservationCreateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateReservationCreate(&req, h.location) }) {
		return
	}

	caravanID, _ := primitive.ObjectIDFromHex(req.CaravanID)
	start, _ := utils.ParseDate(req.StartDate, h.location)
	end, _ := utils.ParseDate(req.EndDate, h.location)

	reservation, err := h.reservationService.Create(c.Request.Context(), guestID, &services.CreateReservationInput{
		CaravanID: caravanID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Reservation requested successfully", reservation)
}

func (h *ReservationHandler) ListMine(c *gin.Context) {
	h.list(c, h.reservationService.ListForGuest)
}

func (h *ReservationHandler) ListHosting(c *gin.Context) {
	h.list(c, h.reservationService.ListForHost)
}

func (h *ReservationHandler) list(c *gin.Context, fetch func(context.Context, primitive.ObjectID) ([]*models.Reservation, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reservations, err := fetch(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reservations retrieved successfully", reservations, &utils.Meta{Count: len(reservations)})
}

func (h *ReservationHandler) Get(c *gin.Context) {
	h.act(c, "Reservation retrieved successfully", h.reservationService.Get)
}

func (h *ReservationHandler) Approve(c *gin.Context) {
	h.act(c, "Reservation approved", h.reservationService.Approve)
}

func (h *ReservationHandler) Reject(c *gin.Context) {
	h.act(c, "Reservation rejected", h.reservationService.Reject)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.act(c, "Reservation cancelled", h.reservationService.Cancel)
}

// act runs an operation keyed by the :id reservation and the caller.
func (h *ReservationHandler) act(c *gin.Context, message string, op func(ctx context.Context, reservationID, actorID primitive.ObjectID) (*models.Reservation, error)) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := op(c.Request.Context(), reservationID, actorID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, message, reservation)
}
