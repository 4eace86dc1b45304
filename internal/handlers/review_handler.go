package handlers

import (
	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	reviewerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.ReviewCreateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateReviewCreate(&req) }) {
		return
	}

	input := &services.CreateReviewInput{
		Rating:  req.Rating,
		Content: req.Content,
	}
	input.ReservationID, _ = primitive.ObjectIDFromHex(req.ReservationID)
	if req.CaravanID != "" {
		caravanID, _ := primitive.ObjectIDFromHex(req.CaravanID)
		input.CaravanID = &caravanID
	}

	review, err := h.reviewService.Create(c.Request.Context(), reviewerID, input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review created successfully", review)
}

// ListForUser returns the reviews a user received as a host.
func (h *ReviewHandler) ListForUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{Count: len(reviews)})
}
