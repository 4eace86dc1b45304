package handlers

import (
	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
)

type CaravanHandler struct {
	caravanService     services.CaravanService
	reservationService services.ReservationService
	reviewService      services.ReviewService
}

func NewCaravanHandler(caravanService services.CaravanService, reservationService services.ReservationService, reviewService services.ReviewService) *CaravanHandler {
	return &CaravanHandler{
		caravanService:     caravanService,
		reservationService: reservationService,
		reviewService:      reviewService,
	}
}

func (h *CaravanHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := interfaces.CaravanFilter{
		Search: params.Search,
		Skip:   params.GetSkip(),
		Limit:  params.GetLimit(),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.CaravanStatus(raw)
		if !status.IsValid() {
			utils.BadRequestResponse(c, "Invalid status filter")
			return
		}
		filter.Status = &status
	}

	caravans, total, err := h.caravanService.List(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}
	utils.SuccessResponseWithMeta(c, "Caravans retrieved successfully", caravans, meta)
}

func (h *CaravanHandler) Get(c *gin.Context) {
	caravanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	caravan, err := h.caravanService.Get(c.Request.Context(), caravanID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Caravan retrieved successfully", caravan)
}

// BookedDates lists the ranges that block new reservations.
func (h *CaravanHandler) BookedDates(c *gin.Context) {
	caravanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ranges, err := h.reservationService.ListBookedDateRanges(c.Request.Context(), caravanID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booked dates retrieved successfully", ranges)
}

func (h *CaravanHandler) Reviews(c *gin.Context) {
	caravanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForCaravan(c.Request.Context(), caravanID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{Count: len(reviews)})
}

func (h *CaravanHandler) ListMine(c *gin.Context) {
	hostID, ok := currentUser(c)
	if !ok {
		return
	}

	caravans, err := h.caravanService.ListByHost(c.Request.Context(), hostID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Caravans retrieved successfully", caravans, &utils.Meta{Count: len(caravans)})
}

func (h *CaravanHandler) Create(c *gin.Context) {
	hostID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.CaravanCreateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateCaravanCreate(&req) }) {
		return
	}

	caravan, err := h.caravanService.Create(c.Request.Context(), hostID, &services.CaravanInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		DailyRate:   *req.DailyRate,
		Capacity:    req.Capacity,
		Amenities:   req.Amenities,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Caravan created successfully", caravan)
}

func (h *CaravanHandler) Update(c *gin.Context) {
	hostID, ok := currentUser(c)
	if !ok {
		return
	}
	caravanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req validators.CaravanUpdateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateCaravanUpdate(&req) }) {
		return
	}

	caravan, err := h.caravanService.Update(c.Request.Context(), caravanID, hostID, req.Update())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Caravan updated successfully", caravan)
}

func (h *CaravanHandler) Delete(c *gin.Context) {
	hostID, ok := currentUser(c)
	if !ok {
		return
	}
	caravanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.caravanService.Delete(c.Request.Context(), caravanID, hostID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Caravan deleted successfully", nil)
}

// UploadPhotos accepts one or more "photos" parts.
func (h *CaravanHandler) UploadPhotos(c *gin.Context) {
	hostID, ok := currentUser(c)
	if !ok {
		return
	}
	caravanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Multipart form required")
		return
	}
	headers := form.File["photos"]
	if len(headers) == 0 {
		utils.BadRequestResponse(c, "No photos provided")
		return
	}
	if len(headers) > utils.MaxPhotosPerCar {
		utils.BadRequestResponse(c, "Too many photos")
		return
	}

	files, err := readUploads(headers)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	caravan, err := h.caravanService.UploadPhotos(c.Request.Context(), caravanID, hostID, files)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Photos uploaded successfully", caravan)
}
