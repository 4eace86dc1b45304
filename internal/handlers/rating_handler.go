package handlers

import (
	"context"

	"caravanshare/internal/models"
	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// RateGuest lets the host score the guest of a completed stay.
func (h *RatingHandler) RateGuest(c *gin.Context) {
	h.rate(c, "Guest rated successfully", h.ratingService.RateGuest)
}

// RateHost lets the guest score the host once the caravan is reviewed.
func (h *RatingHandler) RateHost(c *gin.Context) {
	h.rate(c, "Host rated successfully", h.ratingService.RateHost)
}

func (h *RatingHandler) rate(c *gin.Context, message string, op func(ctx context.Context, raterID, reservationID primitive.ObjectID, rating int) (*models.User, error)) {
	raterID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.RatingCreateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateStruct(&req) }) {
		return
	}
	reservationID, _ := primitive.ObjectIDFromHex(req.ReservationID)

	user, err := op(c.Request.Context(), raterID, reservationID, req.Rating)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, message, user.Public())
}
