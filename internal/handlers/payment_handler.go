package handlers

import (
	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Pay settles an approved reservation for its guest.
func (h *PaymentHandler) Pay(c *gin.Context) {
	payerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.PaymentCreateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateStruct(&req) }) {
		return
	}
	reservationID, _ := primitive.ObjectIDFromHex(req.ReservationID)

	reservation, err := h.paymentService.Pay(c.Request.Context(), reservationID, payerID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment completed", reservation)
}

func (h *PaymentHandler) GetForReservation(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	reservationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetForReservation(c.Request.Context(), reservationID, actorID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment retrieved successfully", payment)
}
